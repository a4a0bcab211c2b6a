package log

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Logger is the interface driver, rpcclient, and cmd/vandal log through
// instead of fmt.Println, mirroring geth's log.Logger.
type Logger interface {
	// With returns a new Logger that always includes the given key/value
	// context.
	With(ctx ...any) Logger
	// New is an alias for With, kept for parity with geth's log package.
	New(ctx ...any) Logger

	Log(level slog.Level, msg string, ctx ...any)
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// Enabled reports whether a log at level would be emitted, letting
	// callers skip expensive argument construction.
	Enabled(ctx context.Context, level slog.Level) bool
	// Handler returns the underlying slog.Handler.
	Handler() slog.Handler
}

// logger calls Handler.Handle directly (bypassing slog.Logger) so it can
// capture the real call site's PC itself: going through slog.Logger.Log
// here would report this package's own frame to a GlogHandler's Vmodule
// matcher instead of the caller's file.
type logger struct {
	h slog.Handler
}

// NewLogger wraps h in the Logger interface.
func NewLogger(h slog.Handler) Logger {
	return &logger{h: h}
}

func (l *logger) Handler() slog.Handler { return l.h }

func (l *logger) With(ctx ...any) Logger {
	return &logger{h: l.h.WithAttrs(argsToAttrs(ctx))}
}
func (l *logger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *logger) Log(level slog.Level, msg string, ctx ...any) { l.logAt(3, level, msg, ctx...) }
func (l *logger) Trace(msg string, ctx ...any)                { l.logAt(3, LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any)                { l.logAt(3, LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)                 { l.logAt(3, LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)                 { l.logAt(3, LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any)                { l.logAt(3, LevelError, msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)                 { l.logAt(3, LevelCrit, msg, ctx...) }

func (l *logger) logAt(skip int, level slog.Level, msg string, ctx ...any) {
	if !l.h.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(ctx...)
	_ = l.h.Handle(context.Background(), r)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.h.Enabled(ctx, level)
}

func argsToAttrs(args []any) []slog.Attr {
	r := slog.NewRecord(time.Time{}, LevelInfo, "", 0)
	r.Add(args...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}
