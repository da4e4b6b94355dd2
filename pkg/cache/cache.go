package cache

import (
	"sync"
	"time"

	"github.com/relayhub/gateway/pkg/stream"
)

const (
	// ResponseTTL is how long a cached response stays valid.
	ResponseTTL = 60 * time.Second

	// DedupTTL is how long a dedup fingerprint blocks a repeat request.
	DedupTTL = 5 * time.Second

	// SweepInterval is how often both maps are swept for lazy eviction.
	SweepInterval = 30 * time.Second
)

type responseEntry struct {
	value     stream.Metadata
	expiresAt time.Time
}

// Cache is the response cache plus dedup guard. Safe for concurrent use.
// A background goroutine sweeps both maps every SweepInterval; Get and
// SeenRecently additionally bypass-and-delete an expired entry found at
// access time, so a sweep running late never returns stale data.
type Cache struct {
	mu        sync.Mutex
	responses map[string]responseEntry
	dedup     map[string]time.Time

	stopSweep chan struct{}
}

// New creates a Cache and starts its background sweep goroutine.
func New() *Cache {
	c := &Cache{
		responses: make(map[string]responseEntry),
		dedup:     make(map[string]time.Time),
		stopSweep: make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the cached response for key, if present and unexpired.
func (c *Cache) Get(key string) (stream.Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.responses[key]
	if !ok {
		return stream.Metadata{}, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.responses, key)
		return stream.Metadata{}, false
	}
	return e.value, true
}

// Put stores value under key for ResponseTTL.
func (c *Cache) Put(key string, value stream.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[key] = responseEntry{value: value, expiresAt: time.Now().Add(ResponseTTL)}
}

// SeenRecently reports whether key was already recorded within DedupTTL,
// and records it if not. This is an atomic check-and-insert so the caller
// never needs a separate Get+Put pair racing against itself.
func (c *Cache) SeenRecently(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if expiresAt, ok := c.dedup[key]; ok && now.Before(expiresAt) {
		return true
	}
	c.dedup[key] = now.Add(DedupTTL)
	return false
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopSweep:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.responses {
		if now.After(e.expiresAt) {
			delete(c.responses, k)
		}
	}
	for k, expiresAt := range c.dedup {
		if now.After(expiresAt) {
			delete(c.dedup, k)
		}
	}
}

// Close stops the background sweep goroutine. After Close, the maps stop
// being swept but Get/Put/SeenRecently remain safe to call.
func (c *Cache) Close() {
	close(c.stopSweep)
}
