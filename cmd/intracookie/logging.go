package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// newLogger logs to stdout and, when path is set, to a log file that is
// truncated on every run.
func newLogger(path string, verbose bool) (*logrus.Logger, func()) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetOutput(os.Stdout)

	if path == "" {
		return logger, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logger.WithError(err).Warn("Cannot create log directory; logging to stdout only")
		return logger, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		logger.WithError(err).Warn("Cannot open log file; logging to stdout only")
		return logger, func() {}
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return logger, func() { _ = f.Close() }
}
