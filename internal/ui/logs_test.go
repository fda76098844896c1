package ui

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadLogs_RendersTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offerwatch.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	logger.Warn("push connection lost", slog.String("component", "push"))
	_ = f.Close()

	m, _, _ := newTestModel(t, userView())
	msg := loadLogs(path)().(logsMsg)
	if msg.err != nil || len(msg.entries) != 1 {
		t.Fatalf("loadLogs = %#v", msg)
	}
	m.setLogs(msg)
	out := m.logs.View()
	if !strings.Contains(out, "push connection lost") || !strings.Contains(out, "component=") {
		t.Fatalf("log pane = %q", out)
	}
}

func TestLogsKey_TogglesPane(t *testing.T) {
	m, _, _ := newTestModel(t, userView())
	next, cmd := m.Update(keyMsg("l"))
	m = next.(Model)
	if m.mode != modeLogs || cmd == nil {
		t.Fatalf("l did not open the log pane")
	}
	m = press(t, m, "l")
	if m.mode != modeList {
		t.Fatalf("second l did not close the log pane")
	}
}
