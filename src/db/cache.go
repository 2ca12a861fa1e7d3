package db

import (
	"fmt"
	"log"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// Logical paths whose cached responses are invalidated together after a write.
const (
	PathDashboard = "/dashboard"
	PathAccount   = "/account/[id]"
	PathInsights  = "/dashboard/insights"
)

// PathCache stores rendered read results and remembers which path each key belongs to,
// so a mutation can drop everything registered under a path at once.
type PathCache struct {
	cache *ristretto.Cache[string, any]

	mu      sync.Mutex
	keys    map[string]map[string]struct{}
	version uint64
}

func NewPathCache() (*PathCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &PathCache{cache: cache, keys: make(map[string]map[string]struct{})}, nil
}

// Key builds a per-user cache key.
func Key(path string, userID fmt.Stringer, parts ...string) string {
	key := path + ":" + userID.String()
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (c *PathCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Version returns the invalidation counter. Readers take it before loading the rows they
// are about to cache and hand it back to Set.
func (c *PathCache) Version() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Set stores value under key and registers key with every given path. The value is
// discarded if any path was revalidated after version was taken, since it may predate
// that write.
func (c *PathCache) Set(key string, value any, version uint64, paths ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return
	}
	for _, p := range paths {
		if c.keys[p] == nil {
			c.keys[p] = make(map[string]struct{})
		}
		c.keys[p][key] = struct{}{}
	}
	c.cache.Set(key, value, 1)
	c.cache.Wait()
}

// RevalidatePath drops every entry registered under path.
func (c *PathCache) RevalidatePath(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.version++
	keys := c.keys[path]
	delete(c.keys, path)
	c.mu.Unlock()

	for key := range keys {
		c.cache.Del(key)
	}
	if len(keys) > 0 {
		log.Printf("INFO: Revalidated path %s (%d entries)", path, len(keys))
	}
}

func (c *PathCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
