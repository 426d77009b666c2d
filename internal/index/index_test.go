package index

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func intCmp(probe int) Compare[int] {
	return func(v int) int { return v - probe }
}

func TestBinarySearch_Rank(t *testing.T) {
	sorted := []int{1, 3, 3, 3, 7, 9}
	bs := NewBinarySearch(sorted)

	tests := []struct {
		probe int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 4},
		{9, 5},
		{10, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bs.Rank(intCmp(tt.probe)), "probe %d", tt.probe)
	}
}

func TestBinarySearch_RankProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := r.Intn(40)
		s := make([]int, n)
		for i := range s {
			s[i] = r.Intn(20)
		}
		sort.Ints(s)
		bs := NewBinarySearch(s)
		for probe := -1; probe <= 21; probe++ {
			got := bs.Rank(intCmp(probe))
			assert.Equal(t, sort.SearchInts(s, probe), got)

			_, found := bs.Find(intCmp(probe))
			contains := false
			for _, v := range s {
				if v == probe {
					contains = true
				}
			}
			assert.Equal(t, contains, found, "probe %d in %v", probe, s)
		}
	}
}

func TestBinarySearch_Find(t *testing.T) {
	bs := NewBinarySearch([]int{2, 4, 6})
	v, ok := bs.Find(intCmp(4))
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = bs.Find(intCmp(5))
	assert.False(t, ok)

	_, ok = NewBinarySearch([]int(nil)).Find(intCmp(1))
	assert.False(t, ok)
}

func TestBinarySearch_Range(t *testing.T) {
	words := []string{"apple", "banana", "band", "bandana", "can", "cane"}
	bs := NewBinarySearch(words)

	prefix := func(p string) []string {
		return bs.Range(
			func(w string) int { return strings.Compare(w, p) },
			func(w string) int {
				if strings.HasPrefix(w, p) {
					return 0
				}
				return strings.Compare(w, p)
			},
		)
	}

	assert.Equal(t, []string{"banana", "band", "bandana"}, prefix("ban"))
	assert.Equal(t, []string{"band", "bandana"}, prefix("band"))
	assert.Equal(t, []string{"can", "cane"}, prefix("c"))
	assert.Empty(t, prefix("d"))
	assert.Empty(t, prefix("aa"))
}

type item struct {
	name string
}

func suffixKeys(it *item) []string {
	return Suffixes(it.name, 1)
}

func TestSuffixes(t *testing.T) {
	assert.Equal(t, []string{"abc", "bc", "c"}, Suffixes("abc", 1))
	assert.Equal(t, []string{"abc", "bc"}, Suffixes("abc", 2))
	assert.Equal(t, []string{"héllo", "éllo", "llo", "lo", "o"}, Suffixes("héllo", 0))
	assert.Empty(t, Suffixes("", 1))
}

func TestSuffixArray_Match(t *testing.T) {
	controller := &item{"UserController"}
	repo := &item{"UserRepository"}
	fn := &item{"myFunction"}

	sa := NewSuffixArray(suffixKeys)
	sa.AddMany([]*item{controller, repo, fn})

	assert.ElementsMatch(t, []*item{controller, repo}, sa.Match("user"))
	assert.Equal(t, []*item{controller}, sa.Match("contr"))
	assert.Equal(t, []*item{fn}, sa.Match("FUNC"))
	assert.Equal(t, []*item{repo}, sa.Match("sitory"))
	assert.Empty(t, sa.Match("xyz"))
	assert.Empty(t, sa.Match(""))
}

func TestSuffixArray_MatchEveryPrefixOfEveryKey(t *testing.T) {
	names := []string{"alpha", "Beta", "gamma_ray", "$delta", `App\Model`}
	sa := NewSuffixArray(suffixKeys)
	items := make([]*item, len(names))
	for i, n := range names {
		items[i] = &item{n}
		sa.Add(items[i])
	}

	for _, it := range items {
		for _, key := range Suffixes(it.name, 1) {
			for l := 1; l <= len(key); l++ {
				q := key[:l]
				assert.Contains(t, sa.Match(q), it, "query %q", q)
				assert.Contains(t, sa.Match(strings.ToUpper(q)), it, "query %q", strings.ToUpper(q))
			}
		}
	}
}

func TestSuffixArray_Deduplicates(t *testing.T) {
	banana := &item{"banana"}
	sa := NewSuffixArray(suffixKeys)
	sa.Add(banana)
	sa.Add(banana)

	assert.Equal(t, []*item{banana}, sa.Match("a"))
	assert.Equal(t, []*item{banana}, sa.Lookup("ana"))
}

func TestSuffixArray_Remove(t *testing.T) {
	foo := &item{"foo"}
	food := &item{"food"}
	sa := NewSuffixArray(suffixKeys)
	sa.Add(foo)
	sa.Add(food)
	keysBefore := sa.Len()

	sa.Remove(foo)

	assert.Equal(t, []*item{food}, sa.Match("foo"))
	assert.Equal(t, []*item{food}, sa.Match("o"))
	assert.Nil(t, sa.Lookup("foo"))
	assert.Equal(t, keysBefore-3, sa.Len())

	sa.Remove(food)
	assert.Empty(t, sa.Match("f"))
	assert.Zero(t, sa.Len())

	// removing something never indexed is a no-op
	sa.Remove(&item{"bar"})
	assert.Zero(t, sa.Len())
}

func TestSuffixArray_CaseSensitive(t *testing.T) {
	upper := &item{"Foo"}
	lower := &item{"foo"}
	sa := NewSuffixArray(suffixKeys, WithCaseSensitive(true))
	sa.Add(upper)
	sa.Add(lower)

	assert.Equal(t, []*item{upper}, sa.Match("F"))
	assert.Equal(t, []*item{lower}, sa.Match("f"))
	assert.ElementsMatch(t, []*item{upper, lower}, sa.Match("oo"))
	assert.Equal(t, []*item{upper}, sa.Lookup("Foo"))
}

func TestSuffixArray_KeysSorted(t *testing.T) {
	sa := NewSuffixArray(suffixKeys)
	sa.Add(&item{"cab"})
	keys := sa.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, []string{"ab", "b", "cab"}, keys)
}

func TestSuffixArray_AccentedKeysStayContiguous(t *testing.T) {
	ab := &item{"ab"}
	accented := &item{"åb"}
	abz := &item{"abz"}

	for _, tag := range []language.Tag{language.English, language.Swedish, language.German} {
		t.Run(tag.String(), func(t *testing.T) {
			sa := NewSuffixArray(suffixKeys, WithLocale(tag))
			sa.AddMany([]*item{ab, accented, abz})

			assert.Equal(t, []*item{ab, abz}, sa.Match("ab"))
			assert.Equal(t, []*item{accented}, sa.Match("å"))
			assert.Equal(t, []*item{abz}, sa.Lookup("abz"))
			assert.ElementsMatch(t, []*item{ab, accented, abz}, sa.Match("b"))
		})
	}
}

func TestSuffixArray_LocaleOrdersCharacters(t *testing.T) {
	names := []*item{{"z"}, {"å"}, {"a"}}

	en := NewSuffixArray(suffixKeys, WithLocale(language.English))
	en.AddMany(names)
	assert.Equal(t, []string{"a", "å", "z"}, en.Keys())

	sv := NewSuffixArray(suffixKeys, WithLocale(language.Swedish))
	sv.AddMany(names)
	assert.Equal(t, []string{"a", "z", "å"}, sv.Keys())
}

func TestSuffixArray_InvalidUTF8(t *testing.T) {
	first := &item{"\x80z"}
	second := &item{"\x81a"}
	sa := NewSuffixArray(suffixKeys)
	sa.AddMany([]*item{first, second})

	assert.Equal(t, []*item{first}, sa.Match("\x80"))
	assert.Equal(t, []*item{second}, sa.Match("\x81"))
	assert.Equal(t, []*item{first}, sa.Lookup("\x80z"))
}

func TestSuffixArray_MatchNonASCIIPrefixes(t *testing.T) {
	names := []string{"ab", "åb", "abz", "Ärger", "aæ", "straße", "naïve", "résumé", "resume"}
	sa := NewSuffixArray(suffixKeys)
	items := make([]*item, len(names))
	for i, n := range names {
		items[i] = &item{n}
		sa.Add(items[i])
	}

	for _, it := range items {
		for _, key := range Suffixes(it.name, 1) {
			runes := []rune(key)
			for l := 1; l <= len(runes); l++ {
				q := string(runes[:l])
				assert.Contains(t, sa.Match(q), it, "query %q", q)
			}
		}
	}
}

func TestSuffixArray_LookupFold(t *testing.T) {
	upper := &item{"Foo"}
	lower := &item{"foo"}
	other := &item{"food"}
	sa := NewSuffixArray(suffixKeys, WithCaseSensitive(true))
	sa.AddMany([]*item{upper, lower, other})

	assert.Equal(t, []*item{upper}, sa.Lookup("Foo"))
	assert.ElementsMatch(t, []*item{upper, lower}, sa.LookupFold("FOO"))
	assert.Equal(t, []*item{other}, sa.LookupFold("fOOD"))
	assert.Empty(t, sa.LookupFold("fo"))
	assert.Empty(t, sa.LookupFold(""))
}
