package exchange

import (
	"sync"
	"time"
)

// Clock abstracts time for the cache so expiry is testable
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// RateCache holds the last successfully fetched primary provider rate for a
// bounded lifetime. Fallback provider results are never stored here.
type RateCache struct {
	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
	ttl       time.Duration
	clock     Clock
}

// NewRateCache creates a rate cache with the given TTL
func NewRateCache(ttl time.Duration, clock Clock) *RateCache {
	if clock == nil {
		clock = systemClock{}
	}
	return &RateCache{ttl: ttl, clock: clock}
}

// Get returns the cached rate if present and not expired
func (c *RateCache) Get() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rate <= 0 {
		return 0, false
	}
	if c.clock.Now().Sub(c.fetchedAt) >= c.ttl {
		return 0, false
	}
	return c.rate, true
}

// Set stores a rate, restarting the TTL window. Non-positive rates are ignored.
func (c *RateCache) Set(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	c.rate = rate
	c.fetchedAt = c.clock.Now()
	c.mu.Unlock()
}

// Invalidate drops the cached rate
func (c *RateCache) Invalidate() {
	c.mu.Lock()
	c.rate = 0
	c.mu.Unlock()
}

// Age returns how long ago the cached rate was fetched
func (c *RateCache) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rate <= 0 {
		return 0, false
	}
	return c.clock.Now().Sub(c.fetchedAt), true
}
