package storage

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func sym(name, kind, scope string) *Symbol {
	short := name[strings.LastIndex(name, `\`)+1:]
	return &Symbol{Name: name, ShortName: short, Kind: kind, Scope: scope, StartLine: 1, EndLine: 2}
}

func TestReplaceDocument(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := &Document{URI: "file:///a.php", Version: 1, ContentHash: sha256.Sum256([]byte("a"))}
	err := storage.ReplaceDocument(ctx, doc, []*Symbol{
		sym(`App\User`, "class", ""),
		sym("getName", "method", `App\User`),
	})
	require.NoError(t, err)
	assert.Greater(t, doc.ID, int64(0))

	got, err := storage.GetDocument(ctx, "file:///a.php")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, int32(1), got.Version)
	assert.Equal(t, 2, got.SymbolCount)
	assert.Equal(t, doc.ContentHash, got.ContentHash)

	// Republishing replaces the rows and keeps the id
	doc2 := &Document{URI: "file:///a.php", Version: 2}
	err = storage.ReplaceDocument(ctx, doc2, []*Symbol{sym(`App\Account`, "class", "")})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, doc2.ID)

	rows, err := storage.ListSymbolsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `App\Account`, rows[0].Name)
	assert.Equal(t, "file:///a.php", rows[0].URI)
}

func TestGetDocument_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	_, err := storage.GetDocument(context.Background(), "file:///missing.php")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	doc := &Document{URI: "file:///a.php"}
	require.NoError(t, storage.ReplaceDocument(ctx, doc, []*Symbol{sym("f", "function", "")}))

	require.NoError(t, storage.DeleteDocument(ctx, "file:///a.php"))
	assert.ErrorIs(t, storage.DeleteDocument(ctx, "file:///a.php"), ErrNotFound)

	rows, err := storage.ListSymbolsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "symbols cascade with the document")
}

func TestSearchSymbols(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.ReplaceDocument(ctx, &Document{URI: "file:///a.php"}, []*Symbol{
		sym(`App\UserRepository`, "class", ""),
		sym(`App\User`, "class", ""),
		sym("findUser", "method", `App\UserRepository`),
		sym("user_count_100%", "function", ""),
	}))
	require.NoError(t, storage.ReplaceDocument(ctx, &Document{URI: "file:///b.php"}, []*Symbol{
		sym(`Lib\Usher`, "interface", ""),
	}))

	tests := []struct {
		name    string
		query   string
		filters *SearchFilters
		want    []string
	}{
		{"exact short name first", "user", nil, []string{`App\User`, "findUser", `App\UserRepository`, "user_count_100%"}},
		{"kind filter", "user", &SearchFilters{Kinds: []string{"method"}}, []string{"findUser"}},
		{"scope filter", "find", &SearchFilters{Scope: `App\UserRepository`}, []string{"findUser"}},
		{"wildcards are literal", "100%", nil, []string{"user_count_100%"}},
		{"underscore is literal", "r_c", nil, []string{"user_count_100%"}},
		{"namespace", `lib\`, nil, []string{`Lib\Usher`}},
		{"no match", "zzz", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := storage.SearchSymbols(ctx, tt.query, 10, tt.filters)
			require.NoError(t, err)
			var names []string
			for _, r := range rows {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	rows, err := storage.SearchSymbols(ctx, "u", 2, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, storage.ReplaceDocument(ctx, &Document{URI: "file:///a.php", ParseErrors: 2}, []*Symbol{
		sym("a", "function", ""), sym("b", "function", ""),
	}))
	require.NoError(t, storage.ReplaceDocument(ctx, &Document{URI: "file:///b.php"}, nil))

	status, err := storage.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)
	assert.Equal(t, 2, status.DocumentsCount)
	assert.Equal(t, 2, status.SymbolsCount)
	assert.Equal(t, 2, status.ParseErrors)
	assert.Equal(t, BuildMode, status.BuildMode)
	assert.Greater(t, status.SizeMB, 0.0)

	docs, err := storage.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "file:///a.php", docs[0].URI)
}

func TestFlatten(t *testing.T) {
	root := types.NewRoot()
	class := &types.Symbol{
		Kind: types.KindClass, Name: `App\User`,
		Location: &protocol.Location{URI: "file:///a.php", Range: protocol.Range{
			Start: protocol.Position{Line: 3, Character: 0},
			End:   protocol.Position{Line: 9, Character: 1},
		}},
	}
	method := &types.Symbol{Kind: types.KindMethod, Name: "save", Scope: `App\User`, Modifiers: types.ModPublic}
	method.AddChild(&types.Symbol{Kind: types.KindParameter, Name: "$force"})
	class.AddChild(method)
	root.AddChild(&types.Symbol{Kind: types.KindClass, Name: "Model", Modifiers: types.ModUse})
	root.AddChild(class)
	root.AddChild(&types.Symbol{Kind: types.KindVariable, Name: "$x"})

	rows := Flatten(root)
	require.Len(t, rows, 2)
	assert.Equal(t, `App\User`, rows[0].Name)
	assert.Equal(t, "User", rows[0].ShortName)
	assert.Equal(t, 3, rows[0].StartLine)
	assert.Equal(t, 9, rows[0].EndLine)
	assert.Equal(t, "save", rows[1].Name)
	assert.Equal(t, "method", rows[1].Kind)
	assert.Equal(t, "public", rows[1].Modifiers)

	rows[0].URI = "file:///a.php"
	assert.Equal(t, *class.Location, rows[0].Location())
}
