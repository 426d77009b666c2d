package types

import "strings"

// TypeExpr is a union of named types, such as int|string|null
type TypeExpr struct {
	Names []string
}

// NewType creates a type expression from the given names
func NewType(names ...string) TypeExpr {
	var t TypeExpr
	for _, n := range names {
		t = t.Add(n)
	}
	return t
}

// ParseTypeString parses a docblock or declared type string.
// "?Foo" becomes Foo|null; generic arguments are kept verbatim.
func ParseTypeString(s string) TypeExpr {
	s = strings.TrimSpace(s)
	var t TypeExpr
	if s == "" {
		return t
	}
	nullable := strings.HasPrefix(s, "?")
	s = strings.TrimPrefix(s, "?")
	for _, part := range splitUnion(s) {
		part = strings.Trim(strings.TrimSpace(part), "()")
		t = t.Add(part)
	}
	if nullable {
		t = t.Add("null")
	}
	return t
}

// splitUnion splits on | and & outside of brackets
func splitUnion(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			depth--
		case '|', '&':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Add returns t with name appended unless already present
func (t TypeExpr) Add(name string) TypeExpr {
	name = strings.TrimSpace(name)
	if name == "" || t.Contains(name) {
		return t
	}
	names := make([]string, len(t.Names), len(t.Names)+1)
	copy(names, t.Names)
	return TypeExpr{Names: append(names, name)}
}

// Union merges two type expressions
func (t TypeExpr) Union(other TypeExpr) TypeExpr {
	for _, n := range other.Names {
		t = t.Add(n)
	}
	return t
}

// Contains reports whether name is one of the union members
func (t TypeExpr) Contains(name string) bool {
	for _, n := range t.Names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no type is recorded
func (t TypeExpr) IsEmpty() bool {
	return len(t.Names) == 0
}

// Map returns a new expression with fn applied to every member
func (t TypeExpr) Map(fn func(string) string) TypeExpr {
	var out TypeExpr
	for _, n := range t.Names {
		out = out.Add(fn(n))
	}
	return out
}

// ElementType strips one level of array suffix from every member,
// so Foo[] becomes Foo. Members without a suffix are dropped.
func (t TypeExpr) ElementType() TypeExpr {
	var out TypeExpr
	for _, n := range t.Names {
		if strings.HasSuffix(n, "[]") {
			out = out.Add(strings.TrimSuffix(n, "[]"))
		}
	}
	return out
}

func (t TypeExpr) String() string {
	return strings.Join(t.Names, "|")
}
