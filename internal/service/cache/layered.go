package cache

import "time"

// LayeredCache is a two-level cache: an in-process L1 in front of a shared L2.
// Writes go through to L2 first; L2 hits are copied into L1.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache keeps L1 copies for at most l1TTL, so replicas converge on L2.
func NewLayeredCache(l1 *TTLCache, l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *LayeredCache) GetBytes(key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.l1.Set(key, b, c.l1TTL)
	return b, true, nil
}

func (c *LayeredCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(key, value, ttl); err != nil {
		return err
	}
	l1 := c.l1TTL
	if ttl > 0 && (l1 <= 0 || ttl < l1) {
		l1 = ttl
	}
	c.l1.Set(key, value, l1)
	return nil
}

var _ BytesCache = (*LayeredCache)(nil)
