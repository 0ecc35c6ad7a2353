package diag

import (
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateOptions bounds the size of a rotating log file.
type RotateOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotateOptions keeps roughly a day of flight logs on small storage.
func DefaultRotateOptions() RotateOptions {
	return RotateOptions{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 7, Compress: true}
}

// NewRotatingFile returns a writer appending to path and rotating it by size.
func NewRotatingFile(path string, opts RotateOptions) (io.WriteCloser, error) {
	clean := filepath.Clean(path)
	if clean == "." || filepath.Base(clean) == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid log file path %q", path)
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultRotateOptions().MaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   clean,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}, nil
}
