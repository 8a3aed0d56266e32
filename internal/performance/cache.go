package performance

import (
	"context"
	"errors"
	"sync"
	"time"

	"pulse-mcp/internal/metrics"

	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a fetched snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	snap    *Snapshot
	expired bool
}

// Cache holds the last good snapshot per query signature. The in-memory map
// is authoritative; the optional Store is consulted on a memory miss and
// written through on every successful Put.
//
// A generation counter guards writes: a fetch reads the generation before
// it starts and may only store its result if no invalidation happened in
// between.
type Cache struct {
	mu            sync.Mutex
	ttl           time.Duration
	now           func() time.Time
	store         Store
	entries       map[string]cacheEntry
	gen           uint64
	invalidatedAt time.Time
}

// NewCache creates a cache. A zero ttl selects DefaultTTL; store may be nil.
func NewCache(ttl time.Duration, store Store, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		store:   store,
		entries: make(map[string]cacheEntry),
	}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Lookup returns the snapshot for key and whether it is fresh. A non-nil
// snapshot with fresh=false is a stale candidate for fallback.
func (c *Cache) Lookup(ctx context.Context, key string, force bool) (snap *Snapshot, fresh bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok && c.store != nil {
		loaded, err := c.store.Load(ctx, key)
		switch {
		case err == nil && loaded.Complete():
			c.mu.Lock()
			if existing, exists := c.entries[key]; exists {
				entry = existing
			} else {
				// A persisted snapshot older than the last invalidation is
				// only good for fallback.
				entry = cacheEntry{snap: loaded, expired: !c.invalidatedAt.IsZero() && !loaded.FetchedAt.After(c.invalidatedAt)}
				c.entries[key] = entry
			}
			c.mu.Unlock()
			ok = true
		case err != nil && !errors.Is(err, ErrSnapshotNotFound):
			log.Warn().Err(err).Str("key", key).Msg("Failed to load snapshot from store")
		}
	}

	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	snap = entry.snap
	fresh = !force &&
		!entry.expired &&
		snap.Complete() &&
		c.now().Sub(snap.FetchedAt) < c.ttl

	switch {
	case force:
		metrics.CacheLookups.WithLabelValues("bypass").Inc()
	case fresh:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("expired").Inc()
	}
	return snap, fresh
}

// Generation returns the current write generation. Pass it to Put.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Put stores snap under key unless the cache was invalidated after gen was
// read. It reports whether the snapshot was stored. Incomplete snapshots
// are never stored.
func (c *Cache) Put(ctx context.Context, key string, gen uint64, snap *Snapshot) bool {
	if !snap.Complete() {
		return false
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		log.Debug().Str("key", key).Uint64("gen", gen).Msg("Discarding snapshot fetched before invalidation")
		return false
	}
	c.entries[key] = cacheEntry{snap: snap}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, key, snap); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to persist snapshot")
		}
	}
	return true
}

// Invalidate expires every snapshot and blocks in-flight fetches from
// storing their results. Expired snapshots remain available as stale
// fallback.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidatedAt = c.now()
	for key, entry := range c.entries {
		entry.expired = true
		c.entries[key] = entry
	}
}
