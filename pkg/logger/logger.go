package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes structured entries through zerolog. Warnings and errors are
// additionally counted by the collector, when one is attached.
type Logger struct {
	zl   zerolog.Logger
	sink *collector
}

type Config struct {
	Level      string    // debug, info, warn or error
	Format     string    // json or console
	Output     string    // stdout, stderr or a file path
	TimeFormat string    // defaults to RFC3339 with nanoseconds
	Writer     io.Writer // overrides Output when set
}

// frames between zerolog's Msg and the code that logged: emit and the level method.
const wrapperFrames = 2

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logger: level %q: %w", cfg.Level, err)
	}

	out, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = timeFormat
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + wrapperFrames).
		Logger()
	return &Logger{zl: zl}, nil
}

func openOutput(cfg *Config) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}
	switch cfg.Output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", cfg.Output, err)
	}
	return f, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying fields on every entry. The child shares
// the parent's collector.
func (l *Logger) With(fields ...Field) *Logger {
	zc := l.zl.With()
	for _, f := range fields {
		zc = zc.Interface(f.Key, f.Value())
	}
	return &Logger{zl: zc.Logger(), sink: l.sink}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(zerolog.ErrorLevel, msg, fields) }

func (l *Logger) emit(level zerolog.Level, msg string, fields []Field) {
	ev := l.zl.WithLevel(level)
	for _, f := range fields {
		f.write(ev)
	}
	ev.Msg(msg)

	if l.sink == nil || level < zerolog.WarnLevel {
		return
	}
	values := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		values[f.Key] = f.Value()
	}
	l.sink.add(level.String(), msg, values, callSite(wrapperFrames+1))
}

// callSite names the file as package/file.go:line.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
}

// AddCollector starts aggregating warnings and errors, replacing any
// collector already attached.
func (l *Logger) AddCollector(cfg *CollectionConfig) {
	l.RemoveCollector()
	l.sink = newCollector(cfg)
}

// RemoveCollector flushes and detaches the collector.
func (l *Logger) RemoveCollector() {
	if l.sink != nil {
		l.sink.close()
		l.sink = nil
	}
}

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
	kindError
	kindAny
)

// Field is one key/value pair of a log entry.
type Field struct {
	Key  string
	kind fieldKind
	i    int64
	f    float64
	s    string
	any  interface{}
}

func (f Field) write(ev *zerolog.Event) {
	switch f.kind {
	case kindString:
		ev.Str(f.Key, f.s)
	case kindInt:
		ev.Int64(f.Key, f.i)
	case kindFloat:
		ev.Float64(f.Key, f.f)
	case kindBool:
		ev.Bool(f.Key, f.i != 0)
	case kindError:
		if err, _ := f.any.(error); err != nil {
			ev.AnErr(f.Key, err)
		}
	default:
		ev.Interface(f.Key, f.any)
	}
}

// Value is the field's plain Go value; errors become their message.
func (f Field) Value() interface{} {
	switch f.kind {
	case kindString:
		return f.s
	case kindInt:
		return f.i
	case kindFloat:
		return f.f
	case kindBool:
		return f.i != 0
	case kindError:
		if err, _ := f.any.(error); err != nil {
			return err.Error()
		}
		return nil
	}
	return f.any
}

func String(key, v string) Field                 { return Field{Key: key, kind: kindString, s: v} }
func Strings(key string, v []string) Field       { return String(key, strings.Join(v, ", ")) }
func Int(key string, v int) Field                { return Field{Key: key, kind: kindInt, i: int64(v)} }
func Int64(key string, v int64) Field            { return Field{Key: key, kind: kindInt, i: v} }
func Float64(key string, v float64) Field        { return Field{Key: key, kind: kindFloat, f: v} }
func Any(key string, v interface{}) Field        { return Field{Key: key, kind: kindAny, any: v} }
func Error(err error) Field                      { return Field{Key: "error", kind: kindError, any: err} }
func Duration(key string, v time.Duration) Field { return Int64(key, v.Milliseconds()) }

func Bool(key string, v bool) Field {
	f := Field{Key: key, kind: kindBool}
	if v {
		f.i = 1
	}
	return f
}
