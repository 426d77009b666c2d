package index

import (
	"bytes"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// KeysFunc derives the index keys of an item
type KeysFunc[T any] func(item T) []string

// SuffixArray is a key-sorted index of item sets supporting prefix queries.
//
// Keys are ordered character by character on their case-folded form: each
// character by its locale collation weight, then by its bytes, the shorter
// key first. The order is lexicographic, so every key sharing a folded prefix
// forms one contiguous run. With case sensitivity enabled that run is filtered by the
// exact prefix. Items are shared handles: the same item may sit under many
// keys and is never owned by the index.
type SuffixArray[T comparable] struct {
	mu            sync.Mutex
	nodes         []*suffixNode[T]
	keys          KeysFunc[T]
	caseSensitive bool
	collator      *collate.Collator
	buf           collate.Buffer
	weights       map[string][]byte
}

type suffixNode[T comparable] struct {
	key    string
	folded string
	items  []T
}

// Option configures a SuffixArray
type Option func(*options)

type options struct {
	caseSensitive bool
	locale        language.Tag
}

// WithCaseSensitive toggles case-sensitive matching (default false)
func WithCaseSensitive(on bool) Option {
	return func(o *options) { o.caseSensitive = on }
}

// WithLocale sets the collation locale (default English)
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// NewSuffixArray creates an empty index that derives keys with keys
func NewSuffixArray[T comparable](keys KeysFunc[T], opts ...Option) *SuffixArray[T] {
	o := options{locale: language.English}
	for _, opt := range opts {
		opt(&o)
	}
	return &SuffixArray[T]{
		keys:          keys,
		caseSensitive: o.caseSensitive,
		collator:      collate.New(o.locale),
		weights:       make(map[string][]byte),
	}
}

func (s *SuffixArray[T]) normalize(text string) string {
	if s.caseSensitive {
		return text
	}
	return strings.ToLower(text)
}

// compareKey orders a node against a normalized key
func (s *SuffixArray[T]) compareKey(n *suffixNode[T], key, folded string) int {
	if c := s.compareFolded(n.folded, folded); c != 0 {
		return c
	}
	return strings.Compare(n.key, key)
}

// compareFolded compares a and b one character at a time. Invalid UTF-8
// bytes are single characters.
func (s *SuffixArray[T]) compareFolded(a, b string) int {
	for a != "" && b != "" {
		_, na := utf8.DecodeRuneInString(a)
		_, nb := utf8.DecodeRuneInString(b)
		ca, cb := a[:na], b[:nb]
		if ca != cb {
			if c := bytes.Compare(s.weight(ca), s.weight(cb)); c != 0 {
				return c
			}
			return strings.Compare(ca, cb)
		}
		a, b = a[na:], b[nb:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// weight returns the cached collation key of one character
func (s *SuffixArray[T]) weight(char string) []byte {
	if w, ok := s.weights[char]; ok {
		return w
	}
	w := append([]byte(nil), s.collator.KeyFromString(&s.buf, char)...)
	s.buf.Reset()
	s.weights[char] = w
	return w
}

func (s *SuffixArray[T]) search() BinarySearch[*suffixNode[T]] {
	return NewBinarySearch(s.nodes)
}

// Add indexes item under every key derived from it
func (s *SuffixArray[T]) Add(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(item)
}

// AddMany indexes each item in order
func (s *SuffixArray[T]) AddMany(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.add(item)
	}
}

func (s *SuffixArray[T]) add(item T) {
	for _, raw := range s.keys(item) {
		key := s.normalize(raw)
		if key == "" {
			continue
		}
		folded := strings.ToLower(key)
		cmp := func(n *suffixNode[T]) int { return s.compareKey(n, key, folded) }
		bs := s.search()
		i := bs.Rank(cmp)
		if i < len(s.nodes) && s.nodes[i].key == key {
			s.nodes[i].items = appendUnique(s.nodes[i].items, item)
			continue
		}
		node := &suffixNode[T]{key: key, folded: folded, items: []T{item}}
		s.nodes = append(s.nodes, nil)
		copy(s.nodes[i+1:], s.nodes[i:])
		s.nodes[i] = node
	}
}

// Remove drops item from every key derived from it. Keys left without items
// are deleted.
func (s *SuffixArray[T]) Remove(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, raw := range s.keys(item) {
		key := s.normalize(raw)
		if key == "" {
			continue
		}
		folded := strings.ToLower(key)
		bs := s.search()
		i := bs.Rank(func(n *suffixNode[T]) int { return s.compareKey(n, key, folded) })
		if i >= len(s.nodes) || s.nodes[i].key != key {
			continue
		}
		node := s.nodes[i]
		node.items = removeItem(node.items, item)
		if len(node.items) == 0 {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
		}
	}
}

// Lookup returns the items stored under exactly key
func (s *SuffixArray[T]) Lookup(key string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = s.normalize(key)
	folded := strings.ToLower(key)
	node, ok := s.search().Find(func(n *suffixNode[T]) int { return s.compareKey(n, key, folded) })
	if !ok {
		return nil
	}
	return append([]T(nil), node.items...)
}

// LookupFold returns the items stored under every key equal to key ignoring
// case, in key order then insertion order. Without case sensitivity it is
// Lookup.
func (s *SuffixArray[T]) LookupFold(key string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	folded := strings.ToLower(key)
	if folded == "" {
		return nil
	}
	cmp := func(n *suffixNode[T]) int { return s.compareFolded(n.folded, folded) }
	return collect(s.search().Range(cmp, cmp))
}

// Match returns the de-duplicated union of items under every key that has
// text as a prefix, in key order then insertion order.
func (s *SuffixArray[T]) Match(text string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := s.normalize(text)
	if query == "" {
		return nil
	}
	folded := strings.ToLower(query)

	lower := func(n *suffixNode[T]) int {
		return s.compareFolded(n.folded, folded)
	}
	upper := func(n *suffixNode[T]) int {
		if strings.HasPrefix(n.folded, folded) {
			return 0
		}
		return s.compareFolded(n.folded, folded)
	}

	nodes := s.search().Range(lower, upper)
	if s.caseSensitive {
		exact := nodes[:0:0]
		for _, node := range nodes {
			if strings.HasPrefix(node.key, query) {
				exact = append(exact, node)
			}
		}
		nodes = exact
	}
	return collect(nodes)
}

// collect returns the de-duplicated items of nodes in order
func collect[T comparable](nodes []*suffixNode[T]) []T {
	var out []T
	seen := make(map[T]struct{})
	for _, node := range nodes {
		for _, item := range node.items {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of distinct keys
func (s *SuffixArray[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Keys returns every key in index order
func (s *SuffixArray[T]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		keys[i] = n.key
	}
	return keys
}

// Suffixes returns every suffix of text from the full string down to one of
// at least minLen runes.
func Suffixes(text string, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}
	runes := []rune(text)
	var out []string
	for i := 0; i+minLen <= len(runes); i++ {
		out = append(out, string(runes[i:]))
	}
	return out
}

func appendUnique[T comparable](items []T, item T) []T {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}

func removeItem[T comparable](items []T, item T) []T {
	out := items[:0]
	for _, existing := range items {
		if existing != item {
			out = append(out, existing)
		}
	}
	return out
}
