package types

import (
	"errors"
	"strings"

	"go.lsp.dev/protocol"
)

// SymbolKind represents the type of PHP symbol
type SymbolKind int

const (
	KindNone SymbolKind = iota
	KindNamespace
	KindClass
	KindInterface
	KindTrait
	KindFunction
	KindMethod
	KindProperty
	KindClassConstant
	KindConstant
	KindParameter
	KindVariable
)

var kindNames = [...]string{
	KindNone:          "none",
	KindNamespace:     "namespace",
	KindClass:         "class",
	KindInterface:     "interface",
	KindTrait:         "trait",
	KindFunction:      "function",
	KindMethod:        "method",
	KindProperty:      "property",
	KindClassConstant: "class_constant",
	KindConstant:      "constant",
	KindParameter:     "parameter",
	KindVariable:      "variable",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its SymbolKind
func ParseKind(s string) (SymbolKind, bool) {
	for i, name := range kindNames {
		if name == s {
			return SymbolKind(i), true
		}
	}
	return KindNone, false
}

// IsType returns true for class-like kinds
func (k SymbolKind) IsType() bool {
	return k == KindClass || k == KindInterface || k == KindTrait
}

// IsMember returns true for kinds that live inside a class-like body
func (k SymbolKind) IsMember() bool {
	return k == KindMethod || k == KindProperty || k == KindClassConstant
}

// LSP maps the kind onto the protocol symbol kind
func (k SymbolKind) LSP() protocol.SymbolKind {
	switch k {
	case KindNamespace:
		return protocol.SymbolKindNamespace
	case KindClass:
		return protocol.SymbolKindClass
	case KindInterface, KindTrait:
		return protocol.SymbolKindInterface
	case KindFunction:
		return protocol.SymbolKindFunction
	case KindMethod:
		return protocol.SymbolKindMethod
	case KindProperty:
		return protocol.SymbolKindProperty
	case KindClassConstant, KindConstant:
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

// Modifiers is a bit set of declaration modifiers
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModReadOnly
	ModMagic
	ModAnonymous
	ModVariadic
	ModNullable
	// ModUse marks import aliases and closure capture-list variables
	ModUse

	ModNone Modifiers = 0
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModStatic, "static"},
	{ModAbstract, "abstract"},
	{ModFinal, "final"},
	{ModReadOnly, "readonly"},
	{ModMagic, "magic"},
	{ModAnonymous, "anonymous"},
	{ModVariadic, "variadic"},
	{ModNullable, "nullable"},
	{ModUse, "use"},
}

// Has reports whether every bit of m is set
func (m Modifiers) Has(mod Modifiers) bool {
	return mod != 0 && m&mod == mod
}

// Visibility returns the visibility bits only
func (m Modifiers) Visibility() Modifiers {
	return m & (ModPublic | ModProtected | ModPrivate)
}

func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier maps a keyword onto its modifier bit
func ParseModifier(keyword string) Modifiers {
	for _, mn := range modifierNames {
		if strings.EqualFold(mn.name, keyword) {
			return mn.mod
		}
	}
	return ModNone
}

// Stub is a lightweight named reference to another symbol.
// It records a relation without owning or resolving the target.
type Stub struct {
	Kind SymbolKind
	Name string
}

// Symbol represents a declaration extracted from a PHP syntax tree.
//
// Children are owned exclusively by their parent. Associated entries are
// name references only, resolved later through the symbol store.
type Symbol struct {
	Kind      SymbolKind
	Name      string
	Modifiers Modifiers
	Type      TypeExpr

	// Scope is the fully qualified name of the owning class-like symbol for members
	Scope string

	Children   []*Symbol
	Associated []Stub

	Location    *protocol.Location
	DocLocation *protocol.Location
	Doc         string
}

// NewRoot creates the synthetic root of a per-document symbol tree
func NewRoot() *Symbol {
	return &Symbol{Kind: KindNone}
}

// AddChild appends an owned child symbol
func (s *Symbol) AddChild(child *Symbol) {
	s.Children = append(s.Children, child)
}

// Associate records a relation to another symbol by name
func (s *Symbol) Associate(kind SymbolKind, name string) {
	if name == "" {
		return
	}
	for _, a := range s.Associated {
		if a.Kind == kind && a.Name == name {
			return
		}
	}
	s.Associated = append(s.Associated, Stub{Kind: kind, Name: name})
}

// Stub returns a name reference to this symbol
func (s *Symbol) Stub() Stub {
	return Stub{Kind: s.Kind, Name: s.Name}
}

// ShortName returns the unqualified name
func (s *Symbol) ShortName() string {
	return ShortName(s.Name)
}

// Walk visits s and its descendants in pre-order until fn returns false
func (s *Symbol) Walk(fn func(*Symbol) bool) bool {
	if !fn(s) {
		return false
	}
	for _, c := range s.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Descendants returns every symbol below s in pre-order
func (s *Symbol) Descendants() []*Symbol {
	var out []*Symbol
	for _, c := range s.Children {
		c.Walk(func(d *Symbol) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Child returns the first direct child with the given name whose kind is
// one of kinds. With no kinds every kind matches.
func (s *Symbol) Child(name string, kinds ...SymbolKind) *Symbol {
	for _, c := range s.Children {
		if !NameEqual(c.Kind, c.Name, name) {
			continue
		}
		if len(kinds) == 0 {
			return c
		}
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// Contains reports whether the symbol's location spans pos
func (s *Symbol) Contains(pos protocol.Position) bool {
	if s.Location == nil {
		return false
	}
	return RangeContains(s.Location.Range, pos)
}

// Signature renders a one-line description of the symbol
func (s *Symbol) Signature() string {
	var b strings.Builder
	if mods := s.Modifiers &^ (ModUse | ModNullable | ModVariadic); mods != 0 {
		b.WriteString(mods.String())
		b.WriteByte(' ')
	}
	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	b.WriteString(s.Name)
	if s.Kind == KindFunction || s.Kind == KindMethod {
		b.WriteByte('(')
		first := true
		for _, c := range s.Children {
			if c.Kind != KindParameter {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			if !c.Type.IsEmpty() {
				b.WriteString(c.Type.String())
				b.WriteByte(' ')
			}
			if c.Modifiers.Has(ModVariadic) {
				b.WriteString("...")
			}
			b.WriteString(c.Name)
		}
		b.WriteByte(')')
	}
	if !s.Type.IsEmpty() {
		b.WriteString(": ")
		b.WriteString(s.Type.String())
	}
	return b.String()
}

// Validate performs basic structural validation of the symbol
func (s *Symbol) Validate() error {
	if s.Kind == KindNone {
		return nil
	}
	if s.Name == "" {
		return errors.New("symbol name is required")
	}
	if s.Kind.IsMember() && s.Scope == "" && !s.Modifiers.Has(ModAnonymous) {
		return errors.New("members must have a scope")
	}
	return nil
}

// RangeContains reports whether r spans pos, inclusive of both ends
func RangeContains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}
