package resolve

import "strings"

// Builtins is an immutable set of names that are never namespace-prefixed
type Builtins struct {
	types     map[string]struct{}
	constants map[string]struct{}
}

var builtinTypes = []string{
	"array", "bool", "boolean", "callable", "double", "false", "float",
	"int", "integer", "iterable", "mixed", "never", "null", "object",
	"resource", "string", "true", "void",
	// docblock pseudo types
	"array-key", "class-string", "list", "non-empty-array", "non-empty-list",
	"non-empty-string", "numeric", "numeric-string", "positive-int",
	"negative-int", "scalar", "callable-string",
}

var builtinConstants = []string{
	"true", "false", "null",
	"PHP_EOL", "PHP_INT_MAX", "PHP_INT_MIN", "PHP_INT_SIZE", "PHP_VERSION",
	"PHP_OS", "PHP_OS_FAMILY", "DIRECTORY_SEPARATOR", "PATH_SEPARATOR",
	"E_ALL", "E_ERROR", "E_WARNING", "E_NOTICE", "E_STRICT", "E_DEPRECATED",
}

var defaultBuiltins = NewBuiltins(builtinTypes, builtinConstants)

// DefaultBuiltins returns the PHP primitive types and core constants
func DefaultBuiltins() *Builtins {
	return defaultBuiltins
}

// NewBuiltins creates a builtin set. Type names compare case-insensitively.
func NewBuiltins(typeNames, constants []string) *Builtins {
	b := &Builtins{
		types:     make(map[string]struct{}, len(typeNames)),
		constants: make(map[string]struct{}, len(constants)),
	}
	for _, n := range typeNames {
		b.types[strings.ToLower(n)] = struct{}{}
	}
	for _, n := range constants {
		b.constants[n] = struct{}{}
	}
	return b
}

// IsType reports whether name is a builtin type
func (b *Builtins) IsType(name string) bool {
	if i := strings.IndexByte(name, '<'); i > 0 {
		name = name[:i]
	}
	_, ok := b.types[strings.ToLower(name)]
	return ok
}

// IsConstant reports whether name is a core constant. true, false and null
// are case-insensitive.
func (b *Builtins) IsConstant(name string) bool {
	if _, ok := b.constants[name]; ok {
		return true
	}
	switch strings.ToLower(name) {
	case "true", "false", "null":
		return true
	}
	return false
}
