// Package definition resolves the declaration a cursor position refers to.
//
// A request runs one composite traversal over the document's syntax tree:
// one visitor rebuilds the namespace and import context in effect at the
// cursor, the other finds the deepest node spanning it. The node is then
// classified into a reference shape and resolved through the symbol store.
package definition

import (
	"context"
	"fmt"
	"log/slog"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/document"
	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/store"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/tree"
	"github.com/dshills/phpsymbols/pkg/types"
)

// DocumentSource supplies the current text and syntax tree of a document
type DocumentSource interface {
	Snapshot(uri protocol.DocumentURI) (*document.Document, *syntax.Node, bool)
}

// Options configures a Provider
type Options struct {
	Builtins *resolve.Builtins
	Logger   *slog.Logger
}

// Provider answers definition requests
type Provider struct {
	store    *store.Store
	docs     DocumentSource
	builtins *resolve.Builtins
	log      *slog.Logger
}

// New creates a Provider
func New(st *store.Store, docs DocumentSource, opts Options) *Provider {
	if opts.Builtins == nil {
		opts.Builtins = resolve.DefaultBuiltins()
	}
	return &Provider{
		store:    st,
		docs:     docs,
		builtins: opts.Builtins,
		log:      logging.OrNop(opts.Logger),
	}
}

// Definition returns the location of the declaration referenced at pos, or
// nil when the reference cannot be resolved
func (p *Provider) Definition(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.Location, error) {
	syms, err := p.Resolve(ctx, uri, pos)
	if err != nil {
		return nil, err
	}
	for _, s := range syms {
		if s.Location != nil {
			return s.Location, nil
		}
	}
	return nil, nil
}

// Resolve returns every candidate declaration for the reference at pos,
// in store order
func (p *Provider) Resolve(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]*types.Symbol, error) {
	doc, root, ok := p.docs.Snapshot(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrDocumentNotFound, uri)
	}
	table, ok := p.store.Table(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotIndexed, uri)
	}

	offset := doc.OffsetAt(pos)
	cv := newContextVisitor(offset, p.builtins)
	lv := &locator{offset: offset}
	if err := tree.Traverse(ctx, root, tree.NewComposite[syntax.Element](cv, lv)); err != nil {
		return nil, err
	}

	ref := classify(lv.deepest)
	if ref.Kind == RefNone {
		return nil, nil
	}
	r := &resolution{
		store:    p.store,
		resolver: cv.resolver,
		builtins: p.builtins,
		spine:    spineAt(table.Root(), pos),
	}
	syms := r.resolve(ref)
	p.log.Debug("definition",
		"uri", uri,
		"line", pos.Line,
		"ref", ref.Kind.String(),
		"name", ref.Name,
		"candidates", len(syms))
	return syms, nil
}
