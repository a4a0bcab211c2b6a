package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const termTimeFormat = "01-02|15:04:05.000"

// TerminalHandler renders records as a single human-readable line:
// "LVL [date|time] msg key=val key=val". Colorizes the level tag when
// useColor is set (spec.md is silent on log rendering; this is the ambient
// convention geth's cmd/geth applies to its own root logger).
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	useColor bool
	attrs    []slog.Attr
}

// NewTerminalHandler builds a TerminalHandler with no minimum level; pair
// with a levelFilterHandler (see NewTerminalHandlerWithLevel) to filter.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return &TerminalHandler{wr: wr, useColor: useColor}
}

// NewTerminalHandlerWithLevel builds a level-filtered terminal handler.
func NewTerminalHandlerWithLevel(wr io.Writer, level slog.Level, useColor bool) slog.Handler {
	return &levelFilterHandler{level: level, inner: NewTerminalHandler(wr, useColor)}
}

// NewDefaultTerminalHandler picks color/no-color the way cmd/geth's root
// logger does: colorized and ANSI-safe only when wr is a real terminal.
func NewDefaultTerminalHandler(wr io.Writer) slog.Handler {
	if f, ok := wr.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return NewTerminalHandler(colorable.NewColorable(f), true)
	}
	return NewTerminalHandler(wr, false)
}

func (h *TerminalHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	line := formatTerminalLine(r, h.attrs, h.useColor)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.wr.Write(line)
	return err
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &TerminalHandler{wr: h.wr, useColor: h.useColor, attrs: merged}
}

// WithGroup is a no-op: the terminal rendering is a flat key=val line, not
// a nested structure.
func (h *TerminalHandler) WithGroup(string) slog.Handler { return h }

func formatTerminalLine(r slog.Record, extra []slog.Attr, useColor bool) []byte {
	var b strings.Builder

	lvl := levelString(r.Level)
	if useColor {
		lvl = colorizeLevel(r.Level, lvl)
	}
	fmt.Fprintf(&b, "%s [%s] %s", lvl, r.Time.Format(termTimeFormat), r.Message)

	for _, a := range extra {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')
	return []byte(b.String())
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"") {
		fmt.Fprintf(b, " %s=%q", a.Key, val)
	} else {
		fmt.Fprintf(b, " %s=%s", a.Key, val)
	}
}

func colorizeLevel(level slog.Level, s string) string {
	switch {
	case level <= LevelTrace:
		return color.WhiteString(s)
	case level <= LevelDebug:
		return color.BlueString(s)
	case level <= LevelInfo:
		return color.GreenString(s)
	case level <= LevelWarn:
		return color.YellowString(s)
	case level <= LevelError:
		return color.RedString(s)
	default:
		return color.New(color.FgMagenta, color.Bold).Sprint(s)
	}
}

// levelFilterHandler drops records below level before they reach inner,
// the slog-idiomatic equivalent of geth's LvlFilterHandler.
type levelFilterHandler struct {
	level slog.Level
	inner slog.Handler
}

func (h *levelFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *levelFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.level {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilterHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

func (h *levelFilterHandler) WithGroup(name string) slog.Handler {
	return &levelFilterHandler{level: h.level, inner: h.inner.WithGroup(name)}
}

// JSONHandler renders every record as a JSON object, with no level filter.
func JSONHandler(wr io.Writer) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: LevelTrace})
}

// JSONHandlerWithLevel is JSONHandler with a minimum level.
func JSONHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: level})
}

// LogfmtHandler renders key=val lines via slog's built-in text handler.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: LevelTrace})
}
