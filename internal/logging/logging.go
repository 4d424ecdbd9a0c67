// Package logging points the standard logger at stderr and, optionally, a
// size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Path of the log file. Empty logs to stderr only.
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Setup installs the writer on the standard logger. The returned closer
// flushes and closes the log file.
func Setup(opts Options) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if opts.Path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, err
	}

	file := NewRotatingFile(opts)
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}

// NewRotatingFile returns a writer that rotates at MaxSizeMB.
func NewRotatingFile(opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
