// Package logger provides leveled, structured debug logging.
//
// User-facing messages go through package output; this logger traces what the
// engine decided and why (resolution, variant selection, cleanup, installs).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

var levelNames = [...]struct{ name, icon string }{
	LevelDebug:  {"DEBUG", "🔍"},
	LevelInfo:   {"INFO", "ℹ️"},
	LevelWarn:   {"WARN", "⚠️"},
	LevelError:  {"ERROR", "🚨"},
	LevelSilent: {"SILENT", "•"},
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l].name
}

func (l Level) icon() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "•"
	}
	return levelNames[l].icon
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger provides structured logging with configurable levels
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
	SetLevel(level Level)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value any
}

// F is a convenience function for creating fields
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// sink is shared between a logger and the children created by WithFields so
// that level changes and writes stay consistent across them.
type sink struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
	now   func() time.Time
}

type standardLogger struct {
	sink   *sink
	fields []Field
}

// NewLogger creates a new logger with the specified level and output
func NewLogger(level Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	return &standardLogger{
		sink: &sink{level: level, out: out, now: time.Now},
	}
}

// NewSilentLogger creates a logger that outputs nothing
func NewSilentLogger() Logger {
	return NewLogger(LevelSilent, io.Discard)
}

// SetLevel sets the minimum logging level
func (l *standardLogger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// WithFields returns a new logger with additional fields
func (l *standardLogger) WithFields(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &standardLogger{
		sink:   l.sink,
		fields: newFields,
	}
}

func (l *standardLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *standardLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *standardLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *standardLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

func (l *standardLogger) log(level Level, msg string, fields ...Field) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s %s",
		l.sink.now().Format("2006-01-02 15:04:05"), level, level.icon(), msg)

	if len(l.fields)+len(fields) > 0 {
		b.WriteString(" |")
		for _, field := range l.fields {
			fmt.Fprintf(&b, " %s=%v", field.Key, field.Value)
		}
		for _, field := range fields {
			fmt.Fprintf(&b, " %s=%v", field.Key, field.Value)
		}
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.sink.out, b.String())
}
