package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingFileConfig sizes the rotating log file streaming mode writes to
// over a long-running poll (spec §5, §9 driver).
type RotatingFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultRotatingFileConfig rotates at 100 MB and keeps 5 old files for up
// to 28 days; lumberjack's own zero-value defaults keep every old file.
func DefaultRotatingFileConfig(path string) RotatingFileConfig {
	return RotatingFileConfig{Path: path, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28}
}

// NewRotatingFileWriter returns a lumberjack.Logger configured per cfg; it
// implements io.WriteCloser and is meant to back a JSONHandler or
// TerminalHandler(useColor=false) for streaming-mode logs.
func NewRotatingFileWriter(cfg RotatingFileConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
