// Package logging sets up the file-backed structured logger. The TUI owns
// stdout/stderr, so all diagnostics go to a rotating log file.
package logging

import (
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a zerolog logger writing to path with rotation.
// An unknown level falls back to info.
func New(path, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
