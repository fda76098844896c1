// Package logging builds the slog logger shared by every offerwatch
// component. Output goes to a file so the TUI owns the terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options choose where records go.
type Options struct {
	Path   string     // log file; empty disables file output
	Level  slog.Level // minimum level
	Stderr bool       // also write to stderr (headless commands)
}

// NewLogger opens the log file, creating its directory, and returns a
// text-handler logger plus a func that closes the file.
func NewLogger(opts Options) (*slog.Logger, func() error, error) {
	var (
		writers []io.Writer
		file    *os.File
	)
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	closeFn := func() error { return nil }
	if file != nil {
		closeFn = file.Close
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), closeFn, nil
}
