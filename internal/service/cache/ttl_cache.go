package cache

import (
	"sync"
	"time"
)

type entry struct {
	v   any
	exp time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// TTLCache is an in-process cache with per-key expiry. When maxEntries is
// reached, expired keys are swept and then the entry closest to expiry goes.
type TTLCache struct {
	mu         sync.RWMutex
	m          map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewTTLCache builds an unbounded cache.
func NewTTLCache() *TTLCache {
	return NewBoundedTTLCache(0)
}

// NewBoundedTTLCache builds a cache holding at most maxEntries keys; 0 means no bound.
func NewBoundedTTLCache(maxEntries int) *TTLCache {
	return &TTLCache{m: make(map[string]entry), maxEntries: maxEntries, now: time.Now}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists && c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.evict(now)
	}
	c.m[key] = entry{v: v, exp: exp}
}

func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// evict must be called with mu held.
func (c *TTLCache) evict(now time.Time) {
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
	if len(c.m) < c.maxEntries {
		return
	}
	var victim string
	var soonest time.Time
	for k, e := range c.m {
		if victim == "" || (!e.exp.IsZero() && (soonest.IsZero() || e.exp.Before(soonest))) {
			victim, soonest = k, e.exp
		}
	}
	delete(c.m, victim)
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}

var _ BytesCache = (*TTLCache)(nil)
