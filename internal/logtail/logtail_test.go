package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_SlogTextLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Warn("push connection lost", slog.String("component", "push"), slog.String("error", `dial "ws": refused`))

	e := Parse(strings.TrimSpace(buf.String()))
	if e.Level != slog.LevelWarn {
		t.Fatalf("Level = %v, want WARN", e.Level)
	}
	if e.Message != "push connection lost" {
		t.Fatalf("Message = %q", e.Message)
	}
	if e.Time == "" {
		t.Fatal("Time not parsed")
	}
	want := []Attr{{"component", "push"}, {"error", `dial "ws": refused`}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Fatalf("Attrs = %#v, want %#v", e.Attrs, want)
	}
}

func TestParse_PlainLine(t *testing.T) {
	tests := []string{
		"panic: something broke",
		"goroutine 1 [running]:",
		`key="unterminated`,
	}
	for _, line := range tests {
		e := Parse(line)
		if e.Message != line || e.Level != slog.LevelInfo || len(e.Attrs) != 0 {
			t.Errorf("Parse(%q) = %#v, want raw message at INFO", line, e)
		}
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offerwatch.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("identity check failed")
	logger.Info("session changed", slog.Bool("authenticated", true))
	logger.Error("offer update failed")
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := Tail(path, 10, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	want := []string{"session changed", "offer update failed"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("messages = %v, want %v", msgs, want)
	}
}
