package storage

import (
	"context"
	"time"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/pkg/types"
)

// Catalog persists published symbol tables
type Catalog interface {
	// Document operations
	ReplaceDocument(ctx context.Context, doc *Document, symbols []*Symbol) error
	GetDocument(ctx context.Context, uri string) (*Document, error)
	DeleteDocument(ctx context.Context, uri string) error
	ListDocuments(ctx context.Context) ([]*Document, error)

	// Symbol operations
	ListSymbolsByDocument(ctx context.Context, documentID int64) ([]*Symbol, error)
	SearchSymbols(ctx context.Context, query string, limit int, filters *SearchFilters) ([]*Symbol, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	Close() error
}

// Document is a catalogued document
type Document struct {
	ID          int64
	URI         string
	Version     int32
	ContentHash [32]byte
	SymbolCount int
	ParseErrors int
	IndexedAt   time.Time
}

// Symbol is a flattened catalog row
type Symbol struct {
	ID         int64
	DocumentID int64
	URI        string // filled by queries joining documents
	Name       string
	ShortName  string
	Kind       string
	Scope      string
	Modifiers  string
	Type       string
	Signature  string
	DocComment string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

// SearchFilters narrows SearchSymbols results
type SearchFilters struct {
	Kinds []string // symbol kinds, e.g. "class", "method"
	Scope string   // exact owner name for members
}

// Status contains catalog statistics
type Status struct {
	SchemaVersion  string
	DocumentsCount int
	SymbolsCount   int
	ParseErrors    int
	SizeMB         float64
	LastIndexedAt  time.Time
	BuildMode      string
}

// FromTypesSymbol converts a symbol into a catalog row
func FromTypesSymbol(s *types.Symbol, documentID int64) *Symbol {
	row := &Symbol{
		DocumentID: documentID,
		Name:       s.Name,
		ShortName:  s.ShortName(),
		Kind:       s.Kind.String(),
		Scope:      s.Scope,
		Modifiers:  s.Modifiers.String(),
		Type:       s.Type.String(),
		Signature:  s.Signature(),
		DocComment: s.Doc,
	}
	if s.Location != nil {
		r := s.Location.Range
		row.StartLine, row.StartCol = int(r.Start.Line), int(r.Start.Character)
		row.EndLine, row.EndCol = int(r.End.Line), int(r.End.Character)
	}
	return row
}

// Location returns the catalogued location of the symbol
func (s *Symbol) Location() protocol.Location {
	return protocol.Location{
		URI: protocol.DocumentURI(s.URI),
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(s.StartLine), Character: uint32(s.StartCol)},
			End:   protocol.Position{Line: uint32(s.EndLine), Character: uint32(s.EndCol)},
		},
	}
}

// Flatten returns the catalog rows for a document symbol tree in
// pre-order. Variables, parameters and import stubs are left out.
func Flatten(root *types.Symbol) []*Symbol {
	var rows []*Symbol
	var visit func(s *types.Symbol)
	visit = func(s *types.Symbol) {
		for _, c := range s.Children {
			if c.Kind == types.KindVariable || c.Kind == types.KindParameter || c.Modifiers.Has(types.ModUse) {
				continue
			}
			rows = append(rows, FromTypesSymbol(c, 0))
			visit(c)
		}
	}
	visit(root)
	return rows
}
