package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"HoopLine/pkg/logger"
)

// WriterConfig tunes the writer behind Producer. Zero fields take the
// defaults in the struct tags; Acks 0 therefore means "all replicas".
type WriterConfig struct {
	Brokers      []string
	Acks         int           `default:"-1"`
	Compression  string        `default:"gzip"`
	MaxAttempts  int           `default:"3"`
	BatchSize    int           `default:"100"`
	BatchBytes   int           `default:"1048576"`
	Linger       time.Duration `default:"1s"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	Async        bool

	// KeyRouted hashes the message key onto a partition, so every message
	// for one game_id is written to, and read back from, a single partition.
	KeyRouted bool

	// Registerer receives the producer metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

func (c *WriterConfig) complete() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("writer defaults: %w", err)
	}
	if len(c.Brokers) == 0 {
		return errors.New("kafka writer: no brokers")
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return nil
}

func (c *WriterConfig) writer() *kafka.Writer {
	var bal kafka.Balancer = &kafka.LeastBytes{}
	if c.KeyRouted {
		bal = &kafka.Hash{}
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Balancer:     bal,
		RequiredAcks: kafka.RequiredAcks(c.Acks),
		Compression:  compressionCodec(c.Compression),
		MaxAttempts:  c.MaxAttempts,
		BatchSize:    c.BatchSize,
		BatchBytes:   int64(c.BatchBytes),
		BatchTimeout: c.Linger,
		WriteTimeout: c.WriteTimeout,
		ReadTimeout:  c.ReadTimeout,
		Async:        c.Async,
	}
}

// ReaderConfig tunes Consumer: one reader per registered topic feeding a
// bounded queue drained by Workers goroutines.
type ReaderConfig struct {
	Brokers []string
	GroupID string `default:"hoopline"`
	// StartAt is where a new group begins: "earliest" or "latest".
	StartAt  string `default:"earliest"`
	MinBytes int    `default:"1"`
	MaxBytes int    `default:"10485760"`

	Workers    int           `default:"1"`
	Buffer     int           `default:"16"`
	Retries    int           `default:"3"`
	BackoffMin time.Duration `default:"50ms"`
	BackoffMax time.Duration `default:"2s"`
	// DLQTopic receives messages that exhausted their retries. Empty disables
	// dead-lettering, and such messages are then left uncommitted.
	DLQTopic string

	Hooks      []ConsumerHook
	Logger     *logger.Logger
	Registerer prometheus.Registerer
}

func (c *ReaderConfig) complete() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("reader defaults: %w", err)
	}
	if len(c.Brokers) == 0 {
		return errors.New("kafka reader: no brokers")
	}
	if c.StartAt != "earliest" && c.StartAt != "latest" {
		return fmt.Errorf("kafka reader: start_at %q is neither earliest nor latest", c.StartAt)
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return nil
}

func (c *ReaderConfig) reader(topic string) *kafka.Reader {
	start := kafka.FirstOffset
	if c.StartAt == "latest" {
		start = kafka.LastOffset
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.Brokers,
		Topic:       topic,
		GroupID:     c.GroupID,
		MinBytes:    c.MinBytes,
		MaxBytes:    c.MaxBytes,
		StartOffset: start,
	})
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}

// register adds c to reg, or returns the collector already registered under
// the same name so that several producers or consumers can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var dup prometheus.AlreadyRegisteredError
		if errors.As(err, &dup) {
			if existing, ok := dup.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
