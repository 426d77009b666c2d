package index

import (
	"fmt"
	"testing"
)

// benchItems generates class-like names of the shape seen in framework code
func benchItems(n int) []*item {
	prefixes := []string{"User", "Order", "Invoice", "Payment", "Résumé"}
	suffixes := []string{"Controller", "Repository", "Service", "Factory"}
	items := make([]*item, n)
	for i := range items {
		items[i] = &item{fmt.Sprintf("%s%d%s", prefixes[i%len(prefixes)], i, suffixes[i%len(suffixes)])}
	}
	return items
}

// BenchmarkSuffixArray_AddMany benchmarks building an index from scratch
func BenchmarkSuffixArray_AddMany(b *testing.B) {
	items := benchItems(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sa := NewSuffixArray(suffixKeys)
		sa.AddMany(items)
	}
}

// BenchmarkSuffixArray_Match benchmarks substring queries of varying selectivity
func BenchmarkSuffixArray_Match(b *testing.B) {
	sa := NewSuffixArray(suffixKeys)
	sa.AddMany(benchItems(5000))

	for _, query := range []string{"r", "service", "order42", "sumé", "missing"} {
		b.Run(query, func(b *testing.B) {
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = sa.Match(query)
			}
		})
	}
}

// BenchmarkSuffixArray_Lookup benchmarks exact key lookups
func BenchmarkSuffixArray_Lookup(b *testing.B) {
	items := benchItems(5000)
	sa := NewSuffixArray(suffixKeys)
	sa.AddMany(items)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if got := sa.Lookup(items[i%len(items)].name); len(got) == 0 {
			b.Fatal("indexed name not found")
		}
	}
}
