package readcache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// estimated working set for the negative-lookup filter
const bloomCapacity = 16384

type entry struct {
	value    interface{}
	storedAt time.Time
}

func (e entry) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.storedAt) >= ttl
}

// Options configures a Cache.
type Options struct {
	// Enabled turns the cache on. A disabled cache misses every Get and
	// turns every mutator into a no-op, so callers never branch on it.
	Enabled bool

	// TTL is the maximum entry age. Entries at or past the TTL are
	// treated as absent even before a sweep removes them.
	TTL time.Duration
}

// Cache is a TTL-bounded result cache shared by every concurrent read
// and write request. Expired entries are dropped lazily on Get and
// eagerly by Sweep.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// seen tracks every key ever Set since the last Clear. Definite
	// absence lets Get and Invalidate return before touching the map.
	seen *bloom.BloomFilter

	enabled atomic.Bool
	ttl     atomic.Int64 // nanoseconds

	now func() time.Time
}

// New creates a cache with the given options.
func New(opts Options) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		seen:    bloom.NewWithEstimates(bloomCapacity, 0.01),
		now:     time.Now,
	}
	c.enabled.Store(opts.Enabled)
	c.ttl.Store(int64(opts.TTL))
	return c
}

// Enabled reports whether the cache is currently on.
func (c *Cache) Enabled() bool {
	return c.enabled.Load()
}

// SetEnabled flips the global cache switch. Turning the cache off drops
// all entries so a later re-enable starts clean.
func (c *Cache) SetEnabled(enabled bool) {
	was := c.enabled.Swap(enabled)
	if was && !enabled {
		c.mu.Lock()
		c.entries = make(map[string]entry)
		c.seen.ClearAll()
		c.mu.Unlock()
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return time.Duration(c.ttl.Load())
}

// SetTTL adjusts the time-to-live. Existing entries are judged against
// the new value on their next lookup.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.ttl.Store(int64(ttl))
}

// Get returns the value stored under key if it exists and has not aged
// past the TTL. A miss does not distinguish "never stored" from
// "expired".
func (c *Cache) Get(key string) (interface{}, bool) {
	if !c.enabled.Load() {
		return nil, false
	}

	c.mu.RLock()
	if !c.seen.TestString(key) {
		c.mu.RUnlock()
		cacheMisses.Inc()
		return nil, false
	}
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		cacheMisses.Inc()
		return nil, false
	}

	if e.expired(c.now(), c.TTL()) {
		// Drop the stale entry so the next miss recomputes cleanly.
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		cacheMisses.Inc()
		return nil, false
	}

	cacheHits.Inc()
	return e.value, true
}

// Set stores value under key with the current timestamp, unconditionally
// overwriting any prior entry.
func (c *Cache) Set(key string, value interface{}) {
	if !c.enabled.Load() {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
	c.seen.AddString(key)
	c.mu.Unlock()
}

// Invalidate removes the entry for key if present. Removing an absent
// key is not an error.
func (c *Cache) Invalidate(key string) {
	if !c.enabled.Load() {
		return
	}

	c.mu.Lock()
	if c.seen.TestString(key) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	cacheInvalidations.Inc()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	if !c.enabled.Load() {
		return
	}

	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.seen.ClearAll()
	c.mu.Unlock()
	cacheInvalidations.Inc()
}

// Sweep removes every entry whose age meets or exceeds the TTL and
// returns the number removed. Sweeping an already-clean cache takes only
// a read lock.
func (c *Cache) Sweep() int {
	if !c.enabled.Load() {
		return 0
	}

	now := c.now()
	ttl := c.TTL()

	c.mu.RLock()
	dirty := false
	for _, e := range c.entries {
		if e.expired(now, ttl) {
			dirty = true
			break
		}
	}
	c.mu.RUnlock()

	if !dirty {
		return 0
	}

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now, ttl) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		cacheSweeps.Add(float64(removed))
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
