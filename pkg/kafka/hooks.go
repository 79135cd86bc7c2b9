package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"HoopLine/pkg/logger"
)

// traceHeader carries the id that ties a published prediction back to the
// matchup message it was scored from.
const traceHeader = "trace_id"

// Delivery is one message read from Kafka together with its handling attempt,
// counted from 1.
type Delivery struct {
	Topic   string
	Message kafka.Message
	Attempt int
}

// ConsumerHook observes every handling attempt. A Before error skips the
// handler for that attempt and is treated like a handler error.
type ConsumerHook interface {
	Before(ctx context.Context, d Delivery) (context.Context, error)
	After(ctx context.Context, d Delivery, err error)
}

// HookError reports a hook that panicked.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string { return fmt.Sprintf("hook %s: %v", e.Hook, e.Err) }
func (e *HookError) Unwrap() error { return e.Err }

// hookChain runs Before in order and After in reverse. Panics never escape it.
type hookChain []ConsumerHook

func newHookChain(hooks ...ConsumerHook) hookChain {
	out := make(hookChain, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (c hookChain) Before(ctx context.Context, d Delivery) (context.Context, error) {
	for _, h := range c {
		next, err := guardBefore(h, ctx, d)
		if err != nil {
			return ctx, err
		}
		ctx = next
	}
	return ctx, nil
}

func (c hookChain) After(ctx context.Context, d Delivery, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		guardAfter(c[i], ctx, d, err)
	}
}

func guardBefore(h ConsumerHook, ctx context.Context, d Delivery) (out context.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = ctx, &HookError{Hook: fmt.Sprintf("%T", h), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return h.Before(ctx, d)
}

func guardAfter(h ConsumerHook, ctx context.Context, d Delivery, err error) {
	defer func() { _ = recover() }()
	h.After(ctx, d, err)
}

type traceKey struct{}
type startKey struct{}

// WithTraceID stores id on ctx; an empty id leaves ctx unchanged.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the id stored by WithTraceID, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// StartedAt returns when the current handling attempt began.
func StartedAt(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startKey{}).(time.Time)
	return t, ok
}

// ExtractTraceID reads the trace header of msg.
func ExtractTraceID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == traceHeader {
			return string(h.Value)
		}
	}
	return ""
}

// LoggingHook puts the message's trace id and start time on the context and
// logs how each attempt ended.
type LoggingHook struct {
	log *logger.Logger
}

func NewLoggingHook(log *logger.Logger) LoggingHook { return LoggingHook{log: log} }

func (h LoggingHook) Before(ctx context.Context, d Delivery) (context.Context, error) {
	ctx = context.WithValue(ctx, startKey{}, time.Now())
	return WithTraceID(ctx, ExtractTraceID(d.Message)), nil
}

func (h LoggingHook) After(ctx context.Context, d Delivery, err error) {
	fields := []logger.Field{
		logger.String("topic", d.Topic),
		logger.Int("partition", d.Message.Partition),
		logger.Int64("offset", d.Message.Offset),
		logger.Int("attempt", d.Attempt),
		logger.String("trace_id", TraceID(ctx)),
	}
	if t, ok := StartedAt(ctx); ok {
		fields = append(fields, logger.Duration("took_ms", time.Since(t)))
	}
	if err != nil {
		h.log.Warn("kafka attempt failed", append(fields, logger.String("key", string(d.Message.Key)), logger.Error(err))...)
		return
	}
	h.log.Debug("kafka message handled", fields...)
}
