package types

import "strings"

// NamespaceSeparator separates namespace segments in a qualified name
const NamespaceSeparator = `\`

// ShortName returns the last segment of a qualified name
func ShortName(name string) string {
	if i := strings.LastIndex(name, NamespaceSeparator); i >= 0 {
		return name[i+1:]
	}
	return name
}

// NamespaceOf returns the namespace part of a qualified name
func NamespaceOf(name string) string {
	name = strings.TrimPrefix(name, NamespaceSeparator)
	if i := strings.LastIndex(name, NamespaceSeparator); i >= 0 {
		return name[:i]
	}
	return ""
}

// JoinName prefixes name with namespace ns
func JoinName(ns, name string) string {
	ns = strings.Trim(ns, NamespaceSeparator)
	if ns == "" {
		return name
	}
	if name == "" {
		return ns
	}
	return ns + NamespaceSeparator + name
}

// IsFullyQualified reports whether name starts with the namespace separator
func IsFullyQualified(name string) bool {
	return strings.HasPrefix(name, NamespaceSeparator)
}

// CaseInsensitive reports whether names of kind compare without regard to case.
// Class-likes, functions, methods and namespaces are case-insensitive in PHP.
func CaseInsensitive(kind SymbolKind) bool {
	switch kind {
	case KindNamespace, KindClass, KindInterface, KindTrait, KindFunction, KindMethod:
		return true
	}
	return false
}

// NameEqual compares a symbol name against a query using the rules of kind
func NameEqual(kind SymbolKind, name, query string) bool {
	name = strings.TrimPrefix(name, NamespaceSeparator)
	query = strings.TrimPrefix(query, NamespaceSeparator)
	if CaseInsensitive(kind) {
		return strings.EqualFold(name, query)
	}
	return name == query
}
