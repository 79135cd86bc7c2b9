package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter holds one token bucket per key, typically the caller's IP.
type Limiter struct {
	mu      sync.RWMutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

// New builds a limiter refilling rps tokens per second up to burst.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *Limiter) get(key string) *client {
	l.mu.RLock()
	c, ok := l.clients[key]
	l.mu.RUnlock()
	if ok {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[key]; ok {
		return c
	}
	c = &client{lim: rate.NewLimiter(l.rps, l.burst)}
	l.clients[key] = c
	return c
}

// Allow reports whether one request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	c := l.get(key)
	now := l.now()
	l.mu.Lock()
	c.seen = now
	l.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// Prune drops buckets idle for longer than idle and returns how many went.
func (l *Limiter) Prune(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, c := range l.clients {
		if c.seen.Before(cutoff) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}
