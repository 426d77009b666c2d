// Package store keeps one symbol table per document and answers
// cross-document queries over them.
package store

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/index"
	"github.com/dshills/phpsymbols/pkg/types"
)

// SymbolTable is the immutable symbol tree of one document together with
// its suffix index
type SymbolTable struct {
	uri     protocol.DocumentURI
	root    *types.Symbol
	index   *index.SuffixArray[*types.Symbol]
	symbols []*types.Symbol
}

// NewTable indexes every symbol below root
func NewTable(uri protocol.DocumentURI, root *types.Symbol, opts ...index.Option) *SymbolTable {
	if root == nil {
		root = types.NewRoot()
	}
	t := &SymbolTable{
		uri:     uri,
		root:    root,
		index:   index.NewSuffixArray(keys, opts...),
		symbols: root.Descendants(),
	}
	t.index.AddMany(t.symbols)
	return t
}

// keys indexes every suffix of the short name plus the qualified name.
// Import stubs and anonymous constructs are not searchable.
func keys(sym *types.Symbol) []string {
	if sym.Kind == types.KindNone || sym.Modifiers.Has(types.ModUse) || sym.Modifiers.Has(types.ModAnonymous) {
		return nil
	}
	short := sym.ShortName()
	out := index.Suffixes(short, 1)
	if sym.Name != short {
		out = append(out, sym.Name)
	}
	return out
}

// URI returns the document the table was built from
func (t *SymbolTable) URI() protocol.DocumentURI { return t.uri }

// Root returns the symbol tree
func (t *SymbolTable) Root() *types.Symbol { return t.root }

// Symbols returns every symbol in pre-order
func (t *SymbolTable) Symbols() []*types.Symbol { return t.symbols }

// Keys returns the number of distinct index keys
func (t *SymbolTable) Keys() int { return t.index.Len() }

// Find returns the symbols named exactly name. Qualified names must be
// given in full; a leading separator is ignored. Class-likes, functions,
// methods and namespaces match without regard to case even when the index is
// case-sensitive.
func (t *SymbolTable) Find(name string) []*types.Symbol {
	name = strings.TrimPrefix(name, types.NamespaceSeparator)
	if name == "" {
		return nil
	}
	var out []*types.Symbol
	for _, sym := range t.index.LookupFold(name) {
		if types.NameEqual(sym.Kind, sym.Name, name) {
			out = append(out, sym)
		}
	}
	return out
}

// Match returns the symbols with a key starting with text
func (t *SymbolTable) Match(text string) []*types.Symbol {
	return t.index.Match(text)
}
