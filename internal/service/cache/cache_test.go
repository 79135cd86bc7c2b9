package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestTTLCacheExpiry(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := NewTTLCache()
	c.now = clk.now

	require.NoError(t, c.SetBytes("a", []byte("1"), time.Minute))
	c.Set("forever", []byte("x"), 0)

	b, ok, err := c.GetBytes("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), b)

	clk.t = clk.t.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes("a")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheNonBytes(t *testing.T) {
	c := NewTTLCache()
	c.Set("n", 42, 0)
	_, ok, err := c.GetBytes("n")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCacheBounded(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	c := NewBoundedTTLCache(2)
	c.now = clk.now

	c.Set("short", []byte("s"), time.Minute)
	c.Set("long", []byte("l"), time.Hour)
	c.Set("new", []byte("n"), time.Hour)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("long")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	c.Set("long", []byte("l2"), time.Hour)
	assert.Equal(t, 2, c.Len())
}

type mapCache struct {
	m    map[string][]byte
	gets int
	err  error
}

func (m *mapCache) GetBytes(key string) ([]byte, bool, error) {
	m.gets++
	if m.err != nil {
		return nil, false, m.err
	}
	b, ok := m.m[key]
	return b, ok, nil
}

func (m *mapCache) SetBytes(key string, value []byte, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.m[key] = value
	return nil
}

func TestLayeredCache(t *testing.T) {
	l2 := &mapCache{m: map[string][]byte{"warm": []byte("w")}}
	c := NewLayeredCache(NewTTLCache(), l2, time.Minute)

	b, ok, err := c.GetBytes("warm")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("w"), b)
	_, _, _ = c.GetBytes("warm")
	assert.Equal(t, 1, l2.gets, "second read served from L1")

	require.NoError(t, c.SetBytes("k", []byte("v"), time.Hour))
	assert.Equal(t, []byte("v"), l2.m["k"])
	_, ok, _ = c.GetBytes("k")
	assert.True(t, ok)
	assert.Equal(t, 1, l2.gets)

	_, ok, err = c.GetBytes("cold")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLayeredCacheL2Failure(t *testing.T) {
	l2 := &mapCache{m: map[string][]byte{}, err: assert.AnError}
	c := NewLayeredCache(NewTTLCache(), l2, time.Minute)

	assert.ErrorIs(t, c.SetBytes("k", []byte("v"), 0), assert.AnError)
	_, ok, err := c.GetBytes("k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, assert.AnError)
}
