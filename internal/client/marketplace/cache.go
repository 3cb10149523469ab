package marketplace

import (
	"context"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of query results kept by a QueryCache.
const DefaultCacheSize = 256

// QueryCache memoizes query results by key.
//
// Every key has a generation. Invalidating a key bumps its generation and
// drops the cached value; a fetch only stores its result if the generation it
// started under is still current, so a fetch that raced an invalidation can
// never resurrect stale data. Concurrent fetches of the same key and
// generation share one request. Errors are never cached.
//
// Keys have the form "family" or "family:arg". Invalidating "family:*" bumps
// every key of that family at once.
type QueryCache struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, any]
	gens     map[string]uint64
	families map[string]uint64
	group    singleflight.Group
}

// NewQueryCache creates a cache holding at most size results.
func NewQueryCache(size int) (*QueryCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &QueryCache{
		entries:  entries,
		gens:     make(map[string]uint64),
		families: make(map[string]uint64),
	}, nil
}

func family(key string) string {
	f, _, _ := strings.Cut(key, ":")
	return f
}

// generation must be called with mu held. Both counters only grow, so their
// sum changes whenever either is bumped.
func (c *QueryCache) generation(key string) uint64 {
	return c.gens[key] + c.families[family(key)]
}

// Invalidate drops the given keys. A key ending in ":*" drops the whole family.
func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if f, ok := strings.CutSuffix(key, ":*"); ok {
			c.families[f]++
			for _, k := range c.entries.Keys() {
				if family(k) == f {
					c.entries.Remove(k)
				}
			}
			continue
		}
		c.gens[key]++
		c.entries.Remove(key)
	}
}

func (c *QueryCache) lookup(key string) (any, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries.Get(key); ok {
		return v, 0, true
	}
	return nil, c.generation(key), false
}

func (c *QueryCache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation(key) == gen {
		c.entries.Add(key, v)
	}
}

// Fetch returns the cached value for key or calls fetch to obtain it.
func Fetch[T any](ctx context.Context, c *QueryCache, key string, fetch func(context.Context) (T, error)) (T, error) {
	cached, gen, ok := c.lookup(key)
	if ok {
		return cached.(T), nil
	}

	v, err, _ := c.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
