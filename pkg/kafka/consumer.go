package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"HoopLine/pkg/logger"
)

// MessageHandler consumes the messages of one topic.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, value []byte) error
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as unfixable by retrying: the message is dead-lettered
// after the first attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, came from Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Consumer fetches from every registered topic and hands messages to a pool
// of workers. Messages of one partition are handled one at a time, in order.
// An offset is committed once its message succeeded or was dead-lettered.
type Consumer struct {
	cfg      ReaderConfig
	log      *logger.Logger
	hooks    hookChain
	m        consumerMetrics
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	dlq      *kafka.Writer

	queue  chan Delivery
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	lanesMu sync.Mutex
	lanes   map[lane]*sync.Mutex
}

type lane struct {
	topic     string
	partition int
}

// NewConsumer builds a consumer from cfg. Register handlers before Start.
func NewConsumer(cfg ReaderConfig) (*Consumer, error) {
	if err := cfg.complete(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Consumer{
		cfg:      cfg,
		log:      cfg.Logger,
		hooks:    newHookChain(cfg.Hooks...),
		m:        newConsumerMetrics(cfg.Registerer),
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
		queue:    make(chan Delivery, cfg.Buffer),
		ctx:      ctx,
		cancel:   cancel,
		lanes:    make(map[lane]*sync.Mutex),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.Hash{}}
	}
	return c, nil
}

// RegisterHandler routes h.Topic() to h. A second handler for the same topic is ignored.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, taken := c.handlers[h.Topic()]; taken {
		c.log.Warn("kafka consumer: duplicate handler ignored", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// Start opens one reader per registered topic and launches the workers.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = c.cfg.reader(topic)
	}
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.work()
	}
	for topic, r := range c.readers {
		c.wg.Add(1)
		go c.fetch(topic, r)
	}
	c.log.Info("kafka consumer: started",
		logger.String("group", c.cfg.GroupID),
		logger.Int("topics", len(c.readers)),
		logger.Int("workers", c.cfg.Workers))
	return nil
}

// Stop cancels fetching, waits for in-flight messages until ctx expires and
// closes the readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.cancel()

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("kafka consumer: stop: %w", ctx.Err())
		}

		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Error("kafka consumer: close reader", logger.String("topic", topic), logger.Error(cerr))
			}
		}
		if c.dlq != nil {
			if cerr := c.dlq.Close(); cerr != nil {
				c.log.Error("kafka consumer: close dlq writer", logger.Error(cerr))
			}
		}
		c.log.Info("kafka consumer: stopped")
	})
	return err
}

func (c *Consumer) fetch(topic string, r *kafka.Reader) {
	defer c.wg.Done()
	for {
		msg, err := r.FetchMessage(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.log.Error("kafka consumer: fetch", logger.String("topic", topic), logger.Error(err))
			if !c.sleep(c.cfg.BackoffMin) {
				return
			}
			continue
		}
		select {
		case c.queue <- Delivery{Topic: topic, Message: msg}:
			c.m.depth.Set(float64(len(c.queue)))
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Consumer) work() {
	defer c.wg.Done()
	for {
		select {
		case d := <-c.queue:
			c.m.depth.Set(float64(len(c.queue)))
			h, ok := c.handlers[d.Topic]
			if !ok {
				continue
			}
			start := time.Now()
			if !c.handle(h, d) {
				return
			}
			c.m.latency.WithLabelValues(d.Topic).Observe(time.Since(start).Seconds())
		case <-c.ctx.Done():
			return
		}
	}
}

// handle retries transient failures with backoff, dead-letters what is left
// and commits. It returns false when interrupted by Stop; the offset then
// stays uncommitted and the message is redelivered.
func (c *Consumer) handle(h MessageHandler, d Delivery) bool {
	unlock := c.lock(d.Topic, d.Message.Partition)
	defer unlock()

	var err error
	for d.Attempt = 1; ; d.Attempt++ {
		err = c.attempt(h, d)
		if err == nil || IsPermanent(err) || d.Attempt > c.cfg.Retries {
			break
		}
		c.m.retries.WithLabelValues(d.Topic).Inc()
		if !c.sleep(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, d.Attempt)) {
			return false
		}
	}

	if err != nil {
		c.m.failures.WithLabelValues(d.Topic).Inc()
		c.log.Error("kafka consumer: giving up on message",
			logger.String("topic", d.Topic),
			logger.String("key", string(d.Message.Key)),
			logger.Int("attempts", d.Attempt),
			logger.Bool("permanent", IsPermanent(err)),
			logger.Error(err))
		if c.dlq == nil {
			return true
		}
		c.deadLetter(d, err)
	}
	c.commit(d)
	return true
}

func (c *Consumer) attempt(h MessageHandler, d Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	ctx, err := c.hooks.Before(c.ctx, d)
	if err == nil {
		err = h.Handle(ctx, d.Message.Value)
	}
	c.hooks.After(ctx, d, err)
	return err
}

func (c *Consumer) deadLetter(d Delivery, cause error) {
	err := c.dlq.WriteMessages(context.Background(), kafka.Message{
		Key:   d.Message.Key,
		Value: d.Message.Value,
		Headers: append(d.Message.Headers,
			kafka.Header{Key: "source_topic", Value: []byte(d.Topic)},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
		),
	})
	if err != nil {
		c.log.Error("kafka consumer: dead-letter write", logger.String("dlq", c.cfg.DLQTopic), logger.Error(err))
	}
}

func (c *Consumer) commit(d Delivery) {
	r := c.readers[d.Topic]
	if r == nil {
		return
	}
	var err error
	for i := 1; i <= 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, d.Message)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, i))
	}
	c.log.Error("kafka consumer: commit", logger.String("topic", d.Topic), logger.Int64("offset", d.Message.Offset), logger.Error(err))
}

func (c *Consumer) lock(topic string, partition int) func() {
	c.lanesMu.Lock()
	l, ok := c.lanes[lane{topic, partition}]
	if !ok {
		l = &sync.Mutex{}
		c.lanes[lane{topic, partition}] = l
	}
	c.lanesMu.Unlock()
	l.Lock()
	return l.Unlock
}

// sleep waits for d and reports false if the consumer stopped meanwhile.
func (c *Consumer) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// backoff doubles from lo per attempt, caps at hi and subtracts up to half as jitter.
func backoff(lo, hi time.Duration, attempt int) time.Duration {
	if lo <= 0 {
		lo = 50 * time.Millisecond
	}
	if hi < lo {
		hi = lo
	}
	d := hi
	if attempt < 32 {
		if exp := lo << uint(attempt-1); exp > 0 && exp < hi {
			d = exp
		}
	}
	return d - time.Duration(rand.Int63n(int64(d)/2+1))
}

type consumerMetrics struct {
	depth    prometheus.Gauge
	latency  *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newConsumerMetrics(reg prometheus.Registerer) consumerMetrics {
	return consumerMetrics{
		depth: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hoopline_kafka_consumer_queue_depth",
			Help: "Fetched messages waiting for a worker.",
		})),
		latency: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "hoopline_kafka_consumer_handle_seconds",
			Help: "Time from a worker picking a message up to its commit, retries included.",
		}, []string{"topic"})),
		retries: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoopline_kafka_consumer_retries_total",
			Help: "Handler attempts that failed and were retried.",
		}, []string{"topic"})),
		failures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoopline_kafka_consumer_failures_total",
			Help: "Messages given up on after permanent failure or exhausted retries.",
		}, []string{"topic"})),
	}
}
