// Package dedup caches classifier outcomes keyed by normalized comment
// text. Live chat repeats itself constantly ("show the lamp", "lamp pls",
// "show the lamp" again); a short-TTL cache keeps the classifier bill and
// latency down without changing behavior, since identical text always
// resolves identically.
package dedup

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"stagehand/internal/classifier"
)

// Cache is a TTL cache of classifier results. Expired entries behave
// exactly like misses; a background janitor sweeps them so memory stays
// bounded under high comment volume.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache whose entries expire after ttl. The janitor runs at
// half the TTL (minimum one second).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	sweep := ttl / 2
	if sweep < time.Second {
		sweep = time.Second
	}
	return &Cache{store: gocache.New(ttl, sweep)}
}

// Get returns the cached result for the normalized key, if still fresh.
func (c *Cache) Get(key string) (classifier.Result, bool) {
	if c == nil || key == "" {
		return classifier.Result{}, false
	}
	value, ok := c.store.Get(key)
	if !ok {
		return classifier.Result{}, false
	}
	result, ok := value.(classifier.Result)
	return result, ok
}

// Put stores the result under the normalized key with the default TTL.
// Last writer wins for concurrent puts of the same key, which is fine:
// results for identical normalized text are idempotent.
func (c *Cache) Put(key string, result classifier.Result) {
	if c == nil || key == "" {
		return
	}
	c.store.SetDefault(key, result)
}

// Flush drops every entry. Used when the catalog is replaced, since cached
// intents may reference products that no longer exist.
func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.store.Flush()
}

// Len reports the number of entries, which may include expired items the
// janitor has not swept yet.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}
