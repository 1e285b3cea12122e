// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/wavecore/internal/config"
)

var errLogsOnStderr = xerrors.New("logs are written to stderr")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup applies cfg to the standard logger. Without a file, logs go to
// stderr. The returned closer releases the log file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if cfg.File == "" || cfg.File == "-" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, err
	}
	w := newRotatingWriter(cfg)
	log.SetOutput(w)
	return w, nil
}

func newRotatingWriter(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     30, // 30 days
		Compress:   false,
	}
}

// IsLogsOnStderrError evaluates if the given error reports that stderr cannot
// be captured because the logger itself writes there.
func IsLogsOnStderrError(err error) bool {
	return xerrors.Is(err, errLogsOnStderr)
}
