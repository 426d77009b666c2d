package store

import (
	"log/slog"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"golang.org/x/text/language"

	"github.com/dshills/phpsymbols/internal/index"
	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/pkg/types"
)

// Options configures a Store
type Options struct {
	CaseSensitive bool
	Locale        language.Tag
	Logger        *slog.Logger
}

// Store owns the symbol tables of all documents. Tables are replaced
// whole, so readers never observe a partially built table.
type Store struct {
	mu     sync.RWMutex
	tables map[protocol.DocumentURI]*SymbolTable
	order  []protocol.DocumentURI

	indexOpts []index.Option
	log       *slog.Logger
}

// Stats summarizes store contents
type Stats struct {
	Documents int
	Symbols   int
	Keys      int
}

// New creates an empty store
func New(opts Options) *Store {
	idx := []index.Option{index.WithCaseSensitive(opts.CaseSensitive)}
	if opts.Locale != language.Und {
		idx = append(idx, index.WithLocale(opts.Locale))
	}
	return &Store{
		tables:    make(map[protocol.DocumentURI]*SymbolTable),
		indexOpts: idx,
		log:       logging.OrNop(opts.Logger),
	}
}

// Update replaces the table of uri with one built from root. The document
// keeps its registration position if it was already known.
func (s *Store) Update(uri protocol.DocumentURI, root *types.Symbol) *SymbolTable {
	t := NewTable(uri, root, s.indexOpts...)

	s.mu.Lock()
	if _, ok := s.tables[uri]; !ok {
		s.order = append(s.order, uri)
	}
	s.tables[uri] = t
	s.mu.Unlock()

	s.log.Debug("symbol table updated", "uri", uri, "symbols", len(t.symbols), "keys", t.Keys())
	return t
}

// Remove discards the table of uri
func (s *Store) Remove(uri protocol.DocumentURI) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[uri]; !ok {
		return false
	}
	delete(s.tables, uri)
	for i, u := range s.order {
		if u == uri {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Table returns the table of uri
func (s *Store) Table(uri protocol.DocumentURI) (*SymbolTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[uri]
	return t, ok
}

// Tables returns all tables in registration order
func (s *Store) Tables() []*SymbolTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SymbolTable, 0, len(s.order))
	for _, u := range s.order {
		out = append(out, s.tables[u])
	}
	return out
}

// Find returns every symbol named fqn across all documents, in document
// registration order
func (s *Store) Find(fqn string) []*types.Symbol {
	var out []*types.Symbol
	for _, t := range s.Tables() {
		out = append(out, t.Find(fqn)...)
	}
	return out
}

// FindKind is Find restricted to kinds
func (s *Store) FindKind(fqn string, kinds ...types.SymbolKind) []*types.Symbol {
	var out []*types.Symbol
	for _, sym := range s.Find(fqn) {
		if hasKind(sym.Kind, kinds) {
			out = append(out, sym)
		}
	}
	return out
}

// Match returns the union of substring matches across all documents
func (s *Store) Match(text string) []*types.Symbol {
	var out []*types.Symbol
	for _, t := range s.Tables() {
		out = append(out, t.Match(text)...)
	}
	return out
}

// TypeMembers returns the members of the class-like fqn followed by those
// inherited through its associated base classes, interfaces and traits.
// Associations are resolved by name on every call.
func (s *Store) TypeMembers(fqn string) []*types.Symbol {
	var (
		out     []*types.Symbol
		queue   = []string{fqn}
		visited = map[string]bool{}
	)
	for len(queue) > 0 {
		name := strings.TrimPrefix(queue[0], types.NamespaceSeparator)
		queue = queue[1:]
		key := strings.ToLower(name)
		if name == "" || visited[key] {
			continue
		}
		visited[key] = true

		for _, typ := range s.Find(name) {
			if !typ.Kind.IsType() {
				continue
			}
			for _, c := range typ.Children {
				if c.Kind.IsMember() {
					out = append(out, c)
				}
			}
			for _, a := range typ.Associated {
				queue = append(queue, a.Name)
			}
		}
	}
	return out
}

// Member returns the first member of fqn, own members before inherited
// ones, named name with one of kinds
func (s *Store) Member(fqn, name string, kinds ...types.SymbolKind) *types.Symbol {
	for _, m := range s.TypeMembers(fqn) {
		if hasKind(m.Kind, kinds) && types.NameEqual(m.Kind, m.Name, name) {
			return m
		}
	}
	return nil
}

// Parent returns the base class of the class fqn
func (s *Store) Parent(fqn string) (string, bool) {
	for _, typ := range s.FindKind(fqn, types.KindClass) {
		for _, a := range typ.Associated {
			if a.Kind == types.KindClass {
				return a.Name, true
			}
		}
	}
	return "", false
}

// Stats returns document, symbol and key counts
func (s *Store) Stats() Stats {
	var st Stats
	for _, t := range s.Tables() {
		st.Documents++
		st.Symbols += len(t.symbols)
		st.Keys += t.Keys()
	}
	return st
}

func hasKind(k types.SymbolKind, kinds []types.SymbolKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
