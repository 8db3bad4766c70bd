// Package logging provides the small structured logging interface used by
// the client and the CLI, with a JSON-lines implementation on log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger is the structured logging interface used across jax.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a level name to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// StdoutLogger writes one JSON object per entry through a slog JSON handler.
type StdoutLogger struct {
	logger    *slog.Logger
	component string
	fields    []Field
}

// NewWriterLogger creates a logger writing entries at or above min to out.
func NewWriterLogger(out io.Writer, min Level, component string) *StdoutLogger {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       min.slogLevel(),
		ReplaceAttr: replaceAttr,
	})
	return &StdoutLogger{
		logger:    slog.New(handler),
		component: component,
	}
}

// replaceAttr renders the level in lowercase and the time in RFC 3339 UTC.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToLower(level.String()))
		}
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
		}
	}
	return a
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *StdoutLogger) log(level Level, msg string, fields ...Field) {
	attrs := make([]slog.Attr, 0, 2)
	if s.component != "" {
		attrs = append(attrs, slog.String("component", s.component))
	}
	if merged := mergeFields(s.fields, fields); len(merged) > 0 {
		attrs = append(attrs, slog.Attr{Key: "fields", Value: slog.GroupValue(merged...)})
	}
	s.logger.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// mergeFields flattens persistent and entry fields; a later key replaces an
// earlier one in place.
func mergeFields(persistent, entry []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(persistent)+len(entry))
	index := make(map[string]int, cap(attrs))
	for _, group := range [][]Field{persistent, entry} {
		for _, f := range group {
			attr := slog.Any(f.Key, f.Value)
			if i, ok := index[f.Key]; ok {
				attrs[i] = attr
				continue
			}
			index[f.Key] = len(attrs)
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log(LevelDebug, msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log(LevelInfo, msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log(LevelWarn, msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log(LevelError, msg, fields...)
}

// With returns a child logger. A "component" field replaces the component
// name; every other field is attached to each entry of the child.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{
		logger:    s.logger,
		component: s.component,
		fields:    append([]Field{}, s.fields...),
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
