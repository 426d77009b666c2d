package store

import (
	"fmt"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/pkg/types"
)

// benchTree generates a document with classes that each carry methods and properties
func benchTree(classes int) *types.Symbol {
	root := types.NewRoot()
	for i := 0; i < classes; i++ {
		class := fmt.Sprintf(`App\Domain\Entity%dRepository`, i)
		root.AddChild(sym(types.KindClass, class,
			sym(types.KindMethod, fmt.Sprintf("findBy%d", i)),
			sym(types.KindMethod, "save"),
			sym(types.KindProperty, fmt.Sprintf("$items%d", i)),
		))
		root.AddChild(sym(types.KindFunction, fmt.Sprintf(`App\helper%d`, i)))
	}
	return root
}

// BenchmarkTable_Build benchmarks indexing a large document
func BenchmarkTable_Build(b *testing.B) {
	root := benchTree(500)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = NewTable(uriA, root)
	}
}

// BenchmarkTable_Find benchmarks exact qualified-name lookups
func BenchmarkTable_Find(b *testing.B) {
	tbl := NewTable(uriA, benchTree(500))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if len(tbl.Find(fmt.Sprintf(`app\domain\entity%drepository`, i%500))) == 0 {
			b.Fatal("class not found")
		}
	}
}

// BenchmarkStore_Match benchmarks substring queries across many documents
func BenchmarkStore_Match(b *testing.B) {
	s := New(Options{})
	for d := 0; d < 20; d++ {
		s.Update(uriFor(d), benchTree(50))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = s.Match("repo")
	}
}

func uriFor(n int) protocol.DocumentURI {
	return protocol.DocumentURI(fmt.Sprintf("file:///src/doc%d.php", n))
}
