package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedHandler struct {
	topic string
	errs  []error
	calls int
}

func (h *scriptedHandler) Topic() string { return h.topic }

func (h *scriptedHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.calls <= len(h.errs) {
		return h.errs[h.calls-1]
	}
	return nil
}

type panickingHandler struct{}

func (panickingHandler) Topic() string                        { return "games" }
func (panickingHandler) Handle(context.Context, []byte) error { panic("bad row") }

func newTestConsumer(t *testing.T, reg *prometheus.Registry) *Consumer {
	t.Helper()
	c, err := NewConsumer(ReaderConfig{
		Brokers:    []string{"localhost:9092"},
		Retries:    2,
		BackoffMin: time.Millisecond,
		BackoffMax: time.Millisecond,
		Registerer: reg,
	})
	require.NoError(t, err)
	return c
}

func delivery(topic string) Delivery {
	return Delivery{Topic: topic, Message: kafka.Message{Key: []byte("g1"), Value: []byte(`{}`)}}
}

func TestConsumerRetriesTransientFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestConsumer(t, reg)
	h := &scriptedHandler{topic: "matchups", errs: []error{errors.New("store down")}}

	assert.True(t, c.handle(h, delivery("matchups")))
	assert.Equal(t, 2, h.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.m.retries.WithLabelValues("matchups")))
	assert.Zero(t, testutil.ToFloat64(c.m.failures.WithLabelValues("matchups")))
}

func TestConsumerGivesUpAfterRetries(t *testing.T) {
	c := newTestConsumer(t, prometheus.NewRegistry())
	down := errors.New("store down")
	h := &scriptedHandler{topic: "games", errs: []error{down, down, down, down}}

	assert.True(t, c.handle(h, delivery("games")))
	assert.Equal(t, 3, h.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.m.failures.WithLabelValues("games")))
}

func TestConsumerSkipsRetryOnPermanentFailure(t *testing.T) {
	c := newTestConsumer(t, prometheus.NewRegistry())
	h := &scriptedHandler{topic: "matchups", errs: []error{Permanent(errors.New("bad json"))}}

	assert.True(t, c.handle(h, delivery("matchups")))
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.m.failures.WithLabelValues("matchups")))
}

func TestConsumerTreatsHandlerPanicAsPermanent(t *testing.T) {
	c := newTestConsumer(t, prometheus.NewRegistry())

	assert.True(t, c.handle(panickingHandler{}, delivery("games")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.m.failures.WithLabelValues("games")))
	assert.Zero(t, testutil.ToFloat64(c.m.retries.WithLabelValues("games")))
}

func TestConsumerStopInterruptsBackoff(t *testing.T) {
	c, err := NewConsumer(ReaderConfig{
		Brokers:    []string{"localhost:9092"},
		BackoffMin: time.Hour,
		BackoffMax: time.Hour,
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	require.NoError(t, c.Stop(context.Background()))

	h := &scriptedHandler{topic: "games", errs: []error{errors.New("store down")}}
	assert.False(t, c.handle(h, delivery("games")))
}

func TestConsumerSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newTestConsumer(t, reg)
	b := newTestConsumer(t, reg)
	assert.Same(t, a.m.failures, b.m.failures)
}

func TestReaderConfigDefaults(t *testing.T) {
	cfg := ReaderConfig{Brokers: []string{"k:9092"}, Registerer: prometheus.NewRegistry()}
	require.NoError(t, cfg.complete())
	assert.Equal(t, "hoopline", cfg.GroupID)
	assert.Equal(t, "earliest", cfg.StartAt)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 50*time.Millisecond, cfg.BackoffMin)

	bad := ReaderConfig{Brokers: []string{"k:9092"}, StartAt: "middle"}
	assert.Error(t, bad.complete())
	assert.Error(t, (&ReaderConfig{}).complete())
	assert.Error(t, (&WriterConfig{}).complete())
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 1; attempt < 70; attempt++ {
		d := backoff(0, 0, attempt)
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
	assert.LessOrEqual(t, backoff(time.Millisecond, time.Second, 3), 4*time.Millisecond)
}
