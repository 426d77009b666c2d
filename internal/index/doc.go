// Package index provides ordered lookup structures for symbol search.
//
// BinarySearch answers find, rank and range queries over a sorted slice with
// caller supplied three-way comparators:
//
//	bs := index.NewBinarySearch(sorted)
//	i := bs.Rank(func(v int) int { return v - 42 })
//
// SuffixArray indexes items under generated keys, typically every suffix of a
// name, and answers substring queries as prefix range queries over those keys:
//
//	sa := index.NewSuffixArray(func(s *types.Symbol) []string {
//	    return index.Suffixes(s.ShortName(), 1)
//	})
//	sa.Add(sym)
//	hits := sa.Match("contr") // matches "UserController"
//
// Keys are collated with golang.org/x/text/collate so ordering follows the
// configured locale. Matching is case-insensitive unless WithCaseSensitive is
// set.
package index
