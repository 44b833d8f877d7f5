package readcache

import (
	"testing"
	"time"
)

// fixedClock returns a clock function the test can advance.
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	return func() time.Time { return current }, func(d time.Duration) { current = current.Add(d) }
}

func TestCacheDisabledMissesEverything(t *testing.T) {
	cache := New(Options{Enabled: false, TTL: time.Minute})

	cache.Set("key", "value")
	if _, ok := cache.Get("key"); ok {
		t.Error("disabled cache should not store or return values")
	}
	if cache.Len() != 0 {
		t.Errorf("disabled cache stored %d entries", cache.Len())
	}
}

func TestCacheSetGet(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Minute})

	cache.Set("key", "value")
	v, ok := cache.Get("key")
	if !ok {
		t.Fatal("expected hit for freshly stored key")
	}
	if v.(string) != "value" {
		t.Errorf("got %v, want value", v)
	}

	if _, ok := cache.Get("other"); ok {
		t.Error("expected miss for never-stored key")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: 300 * time.Second})
	clock, advance := fixedClock(time.Unix(1700000000, 0))
	cache.now = clock

	cache.Set("key", "value")

	advance(299 * time.Second)
	if _, ok := cache.Get("key"); !ok {
		t.Fatal("entry expired before TTL elapsed")
	}

	advance(1 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatal("entry survived past TTL")
	}

	// The expired lookup should also have dropped the entry.
	if cache.Len() != 0 {
		t.Errorf("expired entry not removed on lookup, %d entries remain", cache.Len())
	}
}

func TestCacheSetRefreshesTimestamp(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: 10 * time.Second})
	clock, advance := fixedClock(time.Unix(1700000000, 0))
	cache.now = clock

	cache.Set("key", "first")
	advance(8 * time.Second)
	cache.Set("key", "second")
	advance(8 * time.Second)

	v, ok := cache.Get("key")
	if !ok {
		t.Fatal("overwritten entry should live a full TTL from the overwrite")
	}
	if v.(string) != "second" {
		t.Errorf("got %v, want second", v)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Minute})

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Invalidate("a")

	if _, ok := cache.Get("a"); ok {
		t.Error("invalidated key still present")
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("unrelated key was dropped")
	}

	// Removing an absent key is a no-op.
	cache.Invalidate("missing")
}

func TestCacheClear(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Minute})

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("clear left %d entries", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("cleared key still present")
	}
}

func TestCacheDisableDropsEntries(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Minute})

	cache.Set("key", "value")
	cache.SetEnabled(false)
	cache.SetEnabled(true)

	if _, ok := cache.Get("key"); ok {
		t.Error("entry survived a disable/enable cycle")
	}
}

func TestCacheSetTTLAppliesToExistingEntries(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Hour})
	clock, advance := fixedClock(time.Unix(1700000000, 0))
	cache.now = clock

	cache.Set("key", "value")
	advance(2 * time.Minute)

	cache.SetTTL(time.Minute)
	if _, ok := cache.Get("key"); ok {
		t.Error("entry should be judged against the lowered TTL")
	}
}

func TestCacheSweep(t *testing.T) {
	cache := New(Options{Enabled: true, TTL: time.Minute})
	clock, advance := fixedClock(time.Unix(1700000000, 0))
	cache.now = clock

	cache.Set("old-a", 1)
	cache.Set("old-b", 2)
	advance(2 * time.Minute)
	cache.Set("fresh", 3)

	if removed := cache.Sweep(); removed != 2 {
		t.Errorf("sweep removed %d entries, want 2", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("sweep left %d entries, want 1", cache.Len())
	}
	if _, ok := cache.Get("fresh"); !ok {
		t.Error("sweep removed a live entry")
	}

	// A clean cache sweeps nothing.
	if removed := cache.Sweep(); removed != 0 {
		t.Errorf("second sweep removed %d entries, want 0", removed)
	}
}
