// Package logtail reads the tail of offerwatch's own log file for the TUI
// log pane.
//
// Read keeps a ring buffer of the last N lines so large files are scanned
// once without being held in memory. Parse understands the key=value lines
// written by slog's text handler; anything else (a panic trace, say) is
// passed through as a plain message.
package logtail
