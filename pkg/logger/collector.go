package logger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Publisher ships aggregated entries, typically to the logs topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig controls how warnings and errors are batched before they
// are published.
type CollectionConfig struct {
	TimeInterval   time.Duration // flush period, 30s when zero
	CountThreshold int           // distinct entries that force an early flush
	Topic          string
	Source         string // stamped on every batch, e.g. "hoopline/production"
	Publisher      Publisher
}

// AggregatedLogEntry is one distinct warning or error and how often it fired
// since the previous flush.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogBatch is the payload published on every flush.
type LogBatch struct {
	Source    string               `json:"source,omitempty"`
	FlushedAt time.Time            `json:"flushed_at"`
	Entries   []AggregatedLogEntry `json:"entries"`
}

// entryKey identifies repeats: same call site, level, message and field values.
type entryKey struct {
	level, message, caller, fields string
}

type collector struct {
	cfg CollectionConfig

	mu      sync.Mutex
	pending map[entryKey]*AggregatedLogEntry

	stop    chan struct{}
	flusher sync.WaitGroup
	sends   sync.WaitGroup
}

func newCollector(cfg *CollectionConfig) *collector {
	c := &collector{
		cfg:     *cfg,
		pending: make(map[entryKey]*AggregatedLogEntry),
		stop:    make(chan struct{}),
	}
	if c.cfg.TimeInterval <= 0 {
		c.cfg.TimeInterval = 30 * time.Second
	}
	c.flusher.Add(1)
	go c.loop()
	return c
}

func (c *collector) add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := entryKey{level: level, message: message, caller: caller, fields: signature(fields)}

	c.mu.Lock()
	e, seen := c.pending[key]
	if !seen {
		e = &AggregatedLogEntry{Level: level, Message: message, Fields: fields, Caller: caller, FirstSeen: now}
		c.pending[key] = e
	}
	e.Count++
	e.LastSeen = now
	full := c.cfg.CountThreshold > 0 && len(c.pending) >= c.cfg.CountThreshold
	c.mu.Unlock()

	if full {
		c.flush()
	}
}

// signature renders fields in key order so equal maps compare equal.
func signature(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, fields[k])
	}
	return b.String()
}

func (c *collector) loop() {
	defer c.flusher.Done()
	t := time.NewTicker(c.cfg.TimeInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.flush()
		case <-c.stop:
			c.flush()
			return
		}
	}
}

// flush takes everything pending and publishes it in the background.
func (c *collector) flush() {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	taken := c.pending
	c.pending = make(map[entryKey]*AggregatedLogEntry)
	c.mu.Unlock()

	batch := LogBatch{Source: c.cfg.Source, FlushedAt: time.Now().UTC(), Entries: make([]AggregatedLogEntry, 0, len(taken))}
	for _, e := range taken {
		batch.Entries = append(batch.Entries, *e)
	}
	sort.Slice(batch.Entries, func(i, j int) bool {
		a, b := batch.Entries[i], batch.Entries[j]
		switch {
		case !a.FirstSeen.Equal(b.FirstSeen):
			return a.FirstSeen.Before(b.FirstSeen)
		case a.Message != b.Message:
			return a.Message < b.Message
		default:
			return a.Caller < b.Caller
		}
	})

	if c.cfg.Publisher == nil {
		return
	}
	c.sends.Add(1)
	go func() {
		defer c.sends.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
			fmt.Fprintf(os.Stderr, "logger: publish %d aggregated entries: %v\n", len(batch.Entries), err)
		}
	}()
}

// close stops the ticker, flushes what is left and waits for every publish.
func (c *collector) close() {
	close(c.stop)
	c.flusher.Wait()
	c.sends.Wait()
}
