package log

import (
	"os"
	"sync"
)

var (
	rootMu     sync.RWMutex
	rootLogger Logger = NewLogger(NewDefaultTerminalHandler(os.Stderr))
)

// SetDefault replaces the package-level root logger, the one the
// package-level Trace/Debug/.../Crit functions write through.
func SetDefault(l Logger) {
	rootMu.Lock()
	rootLogger = l
	rootMu.Unlock()
}

// Root returns the current default logger.
func Root() Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return rootLogger
}

// New returns a child of Root() carrying ctx as permanent key/value pairs.
func New(ctx ...any) Logger { return Root().New(ctx...) }

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }
