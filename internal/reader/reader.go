// Package reader builds per-document symbol trees from PHP syntax trees.
//
// A Reader drives a visitor over the syntax tree that keeps a spine of the
// symbols currently being populated. Class-likes, functions, methods and
// closures are pushed on entry and popped on exit; properties, constants,
// parameters, variables and imports are appended to the top of the spine.
// Malformed input never fails a read: error nodes are skipped and recorded
// in the result.
package reader

import (
	"context"
	"log/slog"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/document"
	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/tree"
	"github.com/dshills/phpsymbols/pkg/types"
)

// Options configures a Reader
type Options struct {
	// ExternalOnly limits the tree to symbols visible outside the file:
	// no variables, closures, anonymous classes, imports or private members,
	// and function bodies are not visited.
	ExternalOnly bool

	// Builtins are never namespace-prefixed; nil uses resolve.DefaultBuiltins
	Builtins *resolve.Builtins

	Logger *slog.Logger
}

// Reader converts syntax trees to symbol trees. It is stateless between
// reads and safe for concurrent use.
type Reader struct {
	opts Options
	log  *slog.Logger
}

// New creates a Reader
func New(opts Options) *Reader {
	if opts.Builtins == nil {
		opts.Builtins = resolve.DefaultBuiltins()
	}
	return &Reader{opts: opts, log: logging.OrNop(opts.Logger)}
}

// Read traverses root and returns the symbol tree of doc. If ctx is
// cancelled the partial tree is discarded and ctx.Err() returned.
func (r *Reader) Read(ctx context.Context, doc *document.Document, root *syntax.Node) (*types.ParseResult, error) {
	v := newVisitor(r, doc)
	if err := tree.Traverse(ctx, root, v); err != nil {
		return nil, err
	}
	return v.result, nil
}

// frame is one entry of the spine. vars is set for variable scopes
// (the file, functions, methods and closures).
type frame struct {
	sym  *types.Symbol
	node *syntax.Node
	vars map[string]bool
}

type visitor struct {
	tree.Base[syntax.Element]

	opts     Options
	log      *slog.Logger
	doc      *document.Document
	resolver *resolve.Resolver
	result   *types.ParseResult
	spine    []frame
}

func newVisitor(r *Reader, doc *document.Document) *visitor {
	root := types.NewRoot()
	return &visitor{
		opts:     r.opts,
		log:      r.log,
		doc:      doc,
		resolver: resolve.New(r.opts.Builtins),
		result:   &types.ParseResult{Root: root},
		spine:    []frame{{sym: root, vars: map[string]bool{}}},
	}
}

func (v *visitor) top() *frame {
	return &v.spine[len(v.spine)-1]
}

func (v *visitor) push(sym *types.Symbol, n *syntax.Node, scope bool) {
	v.top().sym.AddChild(sym)
	f := frame{sym: sym, node: n}
	if scope {
		f.vars = map[string]bool{}
	}
	v.spine = append(v.spine, f)
}

// add appends a leaf symbol to the top of the spine
func (v *visitor) add(sym *types.Symbol) {
	v.top().sym.AddChild(sym)
}

// scopeFrame returns the innermost variable scope
func (v *visitor) scopeFrame() *frame {
	for i := len(v.spine) - 1; i >= 0; i-- {
		if v.spine[i].vars != nil {
			return &v.spine[i]
		}
	}
	return &v.spine[0]
}

// classFrame returns the innermost class-like symbol, or nil
func (v *visitor) classFrame() *types.Symbol {
	for i := len(v.spine) - 1; i >= 0; i-- {
		if s := v.spine[i].sym; s.Kind.IsType() {
			return s
		}
	}
	return nil
}

func (v *visitor) locate(n *syntax.Node) *protocol.Location {
	return v.doc.LocationOf(n.Value.Start, n.Value.End)
}

func (v *visitor) PreOrder(n *syntax.Node) bool {
	switch n.Value.Kind {
	case syntax.KindError, syntax.KindMissing:
		v.malformed(n)
		return false
	case syntax.KindNamespaceDefinition:
		v.enterNamespace(n)
		return true
	case syntax.KindNamespaceUse:
		v.readUse(n)
		return false
	case syntax.KindClass, syntax.KindInterface, syntax.KindTrait, syntax.KindEnum:
		v.enterClass(n)
		return true
	case syntax.KindAnonymousClass:
		return v.enterAnonymousClass(n)
	case syntax.KindFunction:
		v.enterFunction(n)
		return !v.opts.ExternalOnly
	case syntax.KindMethod:
		return v.enterMethod(n)
	case syntax.KindAnonymousFunction, syntax.KindArrowFunction:
		return v.enterClosure(n)
	case syntax.KindUseDeclaration:
		v.readTraitUse(n)
		return false
	case syntax.KindProperty:
		v.readProperty(n)
		return false
	case syntax.KindConst:
		v.readConst(n)
		return false
	case syntax.KindEnumCase:
		v.readEnumCase(n)
		return false
	case syntax.KindBaseClause, syntax.KindInterfaceClause, syntax.KindParameters, syntax.KindComment:
		return false
	case syntax.KindAssignment:
		v.readAssignment(n)
		return true
	case syntax.KindGlobal:
		v.readGlobal(n)
		return false
	case syntax.KindCatch:
		v.readCatch(n)
		return true
	case syntax.KindForeach:
		v.readForeach(n)
		return true
	case syntax.KindFunctionCall:
		v.readDefine(n)
		return true
	}
	return true
}

func (v *visitor) PostOrder(n *syntax.Node) {
	if len(v.spine) > 1 && v.top().node == n {
		v.spine = v.spine[:len(v.spine)-1]
	}
	if n.Value.Kind == syntax.KindNamespaceDefinition && syntax.Field(n, "body") != nil {
		v.resolver.SetNamespace("")
	}
}

func (v *visitor) malformed(n *syntax.Node) {
	pos := v.doc.PositionAt(n.Value.Start)
	msg := "syntax error"
	if n.Value.Kind == syntax.KindMissing {
		msg = "missing token"
	}
	v.result.AddError(string(v.doc.URI()), int(pos.Line)+1, int(pos.Character)+1, msg)
	v.log.Debug("skipping malformed node",
		"uri", v.doc.URI(),
		"line", pos.Line+1,
		"kind", n.Value.Kind)
}
