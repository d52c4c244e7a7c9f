// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Level represents a logging level.
type Level slog.Level

// Logging levels.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// LoggerInterface is the logging contract used across the application.
// The caller variants (Debugc, Infoc, ...) let wrappers report their
// caller's position instead of their own.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// Logger writes structured log records to the configured writer.
type Logger struct {
	handler slog.Handler
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger that writes JSON records to w at the given minimum
// level. The service name is attached to every record. events may be nil.
func New(w io.Writer, minLevel Level, serviceName string, events *Events) *Logger {
	f := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				v := fmt.Sprintf("%s:%d", filepath.Base(source.File), source.Line)
				return slog.Attr{Key: "file", Value: slog.StringValue(v)}
			}
		}
		return a
	}

	handler := slog.Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.Level(minLevel),
		ReplaceAttr: f,
	}))

	if events != nil {
		handler = newEventHandler(handler, events)
	}

	if serviceName != "" {
		handler = handler.WithAttrs([]slog.Attr{{Key: "service", Value: slog.StringValue(serviceName)}})
	}

	return &Logger{handler: handler}
}

// Events contains hooks invoked per record, keyed by level.
type Events struct {
	Debug func(ctx context.Context, msg string, args ...any)
	Info  func(ctx context.Context, msg string, args ...any)
	Warn  func(ctx context.Context, msg string, args ...any)
	Error func(ctx context.Context, msg string, args ...any)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3, msg, args...)
}

// Info logs at LevelInfo.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3, msg, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3, msg, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, 3, msg, args...)
}

// Debugc logs at LevelDebug reporting the position caller frames up the stack.
func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelDebug, caller, msg, args...)
}

// Infoc logs at LevelInfo reporting the position caller frames up the stack.
func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelInfo, caller, msg, args...)
}

// Warnc logs at LevelWarn reporting the position caller frames up the stack.
func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelWarn, caller, msg, args...)
}

// Errorc logs at LevelError reporting the position caller frames up the stack.
func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelError, caller, msg, args...)
}

func (l *Logger) write(ctx context.Context, level Level, caller int, msg string, args ...any) {
	slogLevel := slog.Level(level)

	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(caller, pcs[:])

	r := slog.NewRecord(time.Now(), slogLevel, msg, pcs[0])

	if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
		r.Add("trace_id", span.SpanContext().TraceID().String())
	}

	r.Add(args...)

	_ = l.handler.Handle(ctx, r)
}

// eventHandler wraps a handler to invoke event hooks per record.
type eventHandler struct {
	handler slog.Handler
	events  *Events
}

func newEventHandler(handler slog.Handler, events *Events) *eventHandler {
	return &eventHandler{handler: handler, events: events}
}

func (h *eventHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *eventHandler) Handle(ctx context.Context, r slog.Record) error {
	var fn func(ctx context.Context, msg string, args ...any)

	switch r.Level {
	case slog.LevelDebug:
		fn = h.events.Debug
	case slog.LevelInfo:
		fn = h.events.Info
	case slog.LevelWarn:
		fn = h.events.Warn
	case slog.LevelError:
		fn = h.events.Error
	}

	if fn != nil {
		fn(ctx, r.Message)
	}

	return h.handler.Handle(ctx, r)
}

func (h *eventHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &eventHandler{handler: h.handler.WithAttrs(attrs), events: h.events}
}

func (h *eventHandler) WithGroup(name string) slog.Handler {
	return &eventHandler{handler: h.handler.WithGroup(name), events: h.events}
}
