package log

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// GlogHandler wraps another Handler and applies glog-style per-file
// verbosity overrides (--vmodule) on top of a global minimum level, exactly
// as geth's GlogHandler does for cmd/geth's -vmodule flag.
type GlogHandler struct {
	origin   slog.Handler
	level    atomic.Int32
	override atomic.Bool

	mu       sync.RWMutex
	patterns []vmodulePattern
}

type vmodulePattern struct {
	glob  string
	level slog.Level
}

// NewGlogHandler wraps h.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{origin: h}
}

// Verbosity sets the global minimum level, used when no Vmodule pattern
// matches the record's call site.
func (g *GlogHandler) Verbosity(level slog.Level) {
	g.level.Store(int32(level))
}

// Vmodule parses a comma-separated "pattern=level" ruleset, the same
// "file.go=5" or "foo*=3" syntax geth's -vmodule flag accepts. An empty
// ruleset clears all per-file overrides.
func (g *GlogHandler) Vmodule(ruleset string) error {
	var rules []vmodulePattern
	for _, rule := range strings.Split(ruleset, ",") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		glob, levelStr, ok := strings.Cut(rule, "=")
		if !ok {
			return fmt.Errorf("log: invalid vmodule rule %q, want pattern=level", rule)
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil {
			return fmt.Errorf("log: invalid verbosity in rule %q: %w", rule, err)
		}
		if _, err := filepath.Match(glob, "probe"); err != nil {
			return fmt.Errorf("log: invalid pattern %q: %w", glob, err)
		}
		rules = append(rules, vmodulePattern{glob: glob, level: slog.Level(level)})
	}

	g.mu.Lock()
	g.patterns = rules
	g.mu.Unlock()
	g.override.Store(len(rules) > 0)
	return nil
}

func (g *GlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (g *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if !g.passes(r) {
		return nil
	}
	return g.origin.Handle(ctx, r)
}

func (g *GlogHandler) passes(r slog.Record) bool {
	if g.override.Load() && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		file := filepath.Base(frame.File)

		g.mu.RLock()
		patterns := g.patterns
		g.mu.RUnlock()

		for _, p := range patterns {
			if ok, _ := filepath.Match(p.glob, file); ok {
				return r.Level >= p.level
			}
		}
	}
	return r.Level >= slog.Level(g.level.Load())
}

func (g *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &GlogHandler{origin: g.origin.WithAttrs(attrs)}
	clone.level.Store(g.level.Load())
	clone.override.Store(g.override.Load())
	g.mu.RLock()
	clone.patterns = g.patterns
	g.mu.RUnlock()
	return clone
}

func (g *GlogHandler) WithGroup(name string) slog.Handler {
	clone := &GlogHandler{origin: g.origin.WithGroup(name)}
	clone.level.Store(g.level.Load())
	clone.override.Store(g.override.Load())
	g.mu.RLock()
	clone.patterns = g.patterns
	g.mu.RUnlock()
	return clone
}
