package workspace

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/phpsymbols/pkg/types"
)

const matchCacheSize = 256

type matchKey struct {
	epoch uint64
	text  string
}

// matchCache memoizes substring matches until the next table change.
// Results computed under an older epoch are stored under a key that is never
// looked up again and age out of the LRU.
type matchCache struct {
	epoch atomic.Uint64
	lru   *lru.Cache[matchKey, []*types.Symbol]
}

func newMatchCache(size int) *matchCache {
	cache, err := lru.New[matchKey, []*types.Symbol](size)
	if err != nil {
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &matchCache{lru: cache}
}

// get returns the matches for text, computing them on a miss
func (c *matchCache) get(text string, compute func(string) []*types.Symbol) []*types.Symbol {
	key := matchKey{epoch: c.epoch.Load(), text: text}
	if hit, ok := c.lru.Get(key); ok {
		return append([]*types.Symbol(nil), hit...)
	}
	res := compute(text)
	c.lru.Add(key, res)
	return append([]*types.Symbol(nil), res...)
}

// invalidate drops every cached result
func (c *matchCache) invalidate() {
	c.epoch.Add(1)
	c.lru.Purge()
}

func (c *matchCache) len() int { return c.lru.Len() }
