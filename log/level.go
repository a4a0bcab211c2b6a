// Package log is a structured logger built on log/slog, in the shape of
// geth's own modern log package: a small Logger interface over a slog.Handler,
// a GlogHandler for per-file verbosity (--vmodule), a colorized terminal
// handler, and JSON/logfmt handlers for machine consumption.
package log

import "log/slog"

// Level constants, spaced like geth's: Trace below slog's own Debug, Crit
// above slog's own Error, so Vmodule rules expressed as plain integers
// (spec.md-adjacent "-vv" style verbosity) compare correctly against both.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = slog.Level(12)
)

func levelString(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRCE"
	case l <= LevelDebug:
		return "DBUG"
	case l <= LevelInfo:
		return "INFO"
	case l <= LevelWarn:
		return "WARN"
	case l <= LevelError:
		return "EROR"
	default:
		return "CRIT"
	}
}
