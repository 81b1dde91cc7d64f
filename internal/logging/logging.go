// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"daybook/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logger on stderr, tee'd into a rotating file when
// cfg.Log.File is set.
func New(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return zerolog.Nop(), err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, fileWriter)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "daybook").Logger(), nil
}
