package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// Message is one keyed payload for PublishBatch. Values other than []byte and
// string are JSON encoded.
type Message struct {
	Key   []byte
	Value interface{}
}

// Producer writes JSON payloads to Kafka and stamps each message with the
// trace id found on the context.
type Producer struct {
	w           *kafka.Writer
	compression string
	m           producerMetrics
}

// NewProducer builds a producer from cfg.
func NewProducer(cfg WriterConfig) (*Producer, error) {
	if err := cfg.complete(); err != nil {
		return nil, err
	}
	return &Producer{
		w:           cfg.writer(),
		compression: cfg.Compression,
		m:           newProducerMetrics(cfg.Registerer),
	}, nil
}

// Publish writes one message to topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishBatch writes msgs to topic in one call. Nothing is written when any
// value fails to encode.
func (p *Producer) PublishBatch(ctx context.Context, topic string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	start := time.Now()
	trace := traceHeaders(ctx)

	out := make([]kafka.Message, len(msgs))
	size := 0
	for i, m := range msgs {
		v, err := encode(m.Value)
		if err != nil {
			return fmt.Errorf("encode %s message %d: %w", topic, i, err)
		}
		out[i] = kafka.Message{Topic: topic, Key: m.Key, Value: v, Headers: trace, Time: start}
		size += len(v)
	}

	err := p.w.WriteMessages(ctx, out...)
	p.m.observe(topic, p.compression, len(out), size, time.Since(start), err)
	return err
}

// PublishMessage writes an unkeyed payload. It satisfies logger.Publisher, so
// the log collector ships its batches through the same writer.
func (p *Producer) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.Publish(ctx, topic, nil, payload)
}

// Close flushes pending writes and releases the writer.
func (p *Producer) Close() error {
	if p.w == nil {
		return nil
	}
	return p.w.Close()
}

func traceHeaders(ctx context.Context) []kafka.Header {
	if id := TraceID(ctx); id != "" {
		return []kafka.Header{{Key: traceHeader, Value: []byte(id)}}
	}
	return nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return json.Marshal(value)
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newProducerMetrics(reg prometheus.Registerer) producerMetrics {
	return producerMetrics{
		messages: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoopline_kafka_producer_messages_total",
			Help: "Messages written to Kafka by topic and outcome.",
		}, []string{"topic", "compression", "result"})),
		bytes: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoopline_kafka_producer_bytes_total",
			Help: "Encoded payload bytes written to Kafka.",
		}, []string{"topic", "compression"})),
		latency: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hoopline_kafka_producer_write_seconds",
			Help:    "Time spent in a single WriteMessages call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})),
	}
}

func (m producerMetrics) observe(topic, compression string, count, size int, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, compression, result).Add(float64(count))
	m.bytes.WithLabelValues(topic, compression).Add(float64(size))
	m.latency.WithLabelValues(topic).Observe(took.Seconds())
}
