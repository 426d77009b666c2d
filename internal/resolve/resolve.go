// Package resolve implements PHP name resolution against the active
// namespace and the use-declared aliases of a file.
package resolve

import (
	"strings"

	"github.com/dshills/phpsymbols/pkg/types"
)

// Kind selects the alias table a name is resolved against
type Kind int

const (
	Class Kind = iota
	Function
	Constant
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Constant:
		return "const"
	default:
		return "class"
	}
}

// KindOf maps the keyword of a use declaration onto a Kind
func KindOf(keyword string) Kind {
	switch strings.ToLower(keyword) {
	case "function":
		return Function
	case "const":
		return Constant
	default:
		return Class
	}
}

// SymbolKind returns the symbol kind of an imported name of kind k
func (k Kind) SymbolKind() types.SymbolKind {
	switch k {
	case Function:
		return types.KindFunction
	case Constant:
		return types.KindConstant
	default:
		return types.KindClass
	}
}

// Resolver holds the namespace and alias context of one traversal.
// It is not safe for concurrent use; Clone it to capture a snapshot.
type Resolver struct {
	builtins  *Builtins
	namespace string
	aliases   [3]map[string]string
}

// New creates a resolver in the global namespace. A nil builtins set uses
// DefaultBuiltins.
func New(builtins *Builtins) *Resolver {
	if builtins == nil {
		builtins = DefaultBuiltins()
	}
	r := &Resolver{builtins: builtins}
	r.reset()
	return r
}

func (r *Resolver) reset() {
	for i := range r.aliases {
		r.aliases[i] = make(map[string]string)
	}
}

// Builtins returns the builtin set in use
func (r *Resolver) Builtins() *Builtins { return r.builtins }

// SetNamespace enters a namespace. Imports do not carry over between
// namespaces, so the alias tables are cleared.
func (r *Resolver) SetNamespace(ns string) {
	r.namespace = strings.Trim(strings.TrimSpace(ns), types.NamespaceSeparator)
	r.reset()
}

// Namespace returns the active namespace, "" for global
func (r *Resolver) Namespace() string { return r.namespace }

// AddAlias declares an import. Class and function aliases are
// case-insensitive, constant aliases are not.
func (r *Resolver) AddAlias(kind Kind, alias, fqn string) {
	fqn = strings.TrimPrefix(strings.TrimSpace(fqn), types.NamespaceSeparator)
	if fqn == "" {
		return
	}
	if alias == "" {
		alias = types.ShortName(fqn)
	}
	r.aliases[kind][aliasKey(kind, alias)] = fqn
}

// Alias returns the target of an import
func (r *Resolver) Alias(kind Kind, alias string) (string, bool) {
	fqn, ok := r.aliases[kind][aliasKey(kind, alias)]
	return fqn, ok
}

// Aliases returns a copy of the alias table of kind
func (r *Resolver) Aliases(kind Kind) map[string]string {
	out := make(map[string]string, len(r.aliases[kind]))
	for k, v := range r.aliases[kind] {
		out[k] = v
	}
	return out
}

func aliasKey(kind Kind, alias string) string {
	if kind == Constant {
		return alias
	}
	return strings.ToLower(alias)
}

// Declare returns the fully qualified name of a declaration in the active
// namespace
func (r *Resolver) Declare(name string) string {
	return types.JoinName(r.namespace, strings.TrimSpace(name))
}

// Resolve turns a name as written into a fully qualified name without the
// leading separator. Builtin types and relative scopes are returned as
// written. Malformed input degrades to the trimmed literal text.
func (r *Resolver) Resolve(kind Kind, raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	// Foo[] and Collection<Foo> resolve their base name only
	if strings.HasSuffix(name, "[]") {
		return r.Resolve(kind, strings.TrimSuffix(name, "[]")) + "[]"
	}
	if i := strings.IndexByte(name, '<'); i > 0 {
		return r.Resolve(kind, name[:i]) + name[i:]
	}

	if types.IsFullyQualified(name) {
		return strings.TrimLeft(name, types.NamespaceSeparator)
	}
	if kind == Class && (r.builtins.IsType(name) || IsRelative(name)) {
		return name
	}
	if kind == Constant && r.builtins.IsConstant(name) {
		return name
	}

	if rest, ok := cutPrefixFold(name, "namespace"+types.NamespaceSeparator); ok {
		return types.JoinName(r.namespace, rest)
	}

	first, rest, qualified := strings.Cut(name, types.NamespaceSeparator)
	if qualified {
		// qualified names go through the class/namespace import table
		if fqn, ok := r.Alias(Class, first); ok {
			return fqn + types.NamespaceSeparator + rest
		}
		return types.JoinName(r.namespace, name)
	}
	if fqn, ok := r.Alias(kind, name); ok {
		return fqn
	}
	return types.JoinName(r.namespace, name)
}

// ResolveType resolves every class name in a type expression
func (r *Resolver) ResolveType(t types.TypeExpr) types.TypeExpr {
	return t.Map(func(n string) string { return r.Resolve(Class, n) })
}

// Clone returns an independent copy of the resolver state
func (r *Resolver) Clone() *Resolver {
	c := &Resolver{builtins: r.builtins, namespace: r.namespace}
	for i, m := range r.aliases {
		c.aliases[i] = make(map[string]string, len(m))
		for k, v := range m {
			c.aliases[i][k] = v
		}
	}
	return c
}

// IsRelative reports whether name is self, static or parent
func IsRelative(name string) bool {
	switch strings.ToLower(name) {
	case "self", "static", "parent", "$this":
		return true
	}
	return false
}

// IsQualified reports whether a written name contains a separator
func IsQualified(name string) bool {
	return strings.Contains(name, types.NamespaceSeparator)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
