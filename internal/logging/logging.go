// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"VixPull/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures logrus from cfg: text format, level, stderr, and an optional
// lumberjack-rotated file. The returned closer releases the log file.
func Setup(cfg config.Logging) (io.Closer, error) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		return nopCloser{}, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	logrus.SetLevel(level)

	if cfg.File == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nopCloser{}, fmt.Errorf("create log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
	logrus.WithFields(logrus.Fields{
		"level": level.String(),
		"file":  cfg.File,
	}).Debug("logging configured")
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
