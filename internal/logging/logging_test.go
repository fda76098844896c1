package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_WritesFileAndCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "offerwatch.log")

	logger, closeFn, err := NewLogger(Options{Path: path, Level: slog.LevelInfo})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("session changed", slog.String("role", "USER"))
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, `msg="session changed"`) || !strings.Contains(out, "role=USER") {
		t.Fatalf("log output = %q, want text handler record", out)
	}
}

func TestNewLogger_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offerwatch.log")
	for _, msg := range []string{"first", "second"} {
		logger, closeFn, err := NewLogger(Options{Path: path})
		if err != nil {
			t.Fatalf("NewLogger returned error: %v", err)
		}
		logger.Info(msg)
		_ = closeFn()
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "\n") != 2 {
		t.Fatalf("log output = %q, want two lines", data)
	}
}

func TestNewLogger_NoOutputs(t *testing.T) {
	logger, closeFn, err := NewLogger(Options{})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Error("dropped")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewLogger_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewLogger(Options{Path: filepath.Join(blocker, "x.log")}); err == nil {
		t.Fatalf("NewLogger under a regular file returned nil error")
	}
}
