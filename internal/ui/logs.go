package ui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/offerwatch/internal/logtail"
)

const logFetchLimit = 500

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func loadLogs(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logFetchLimit, slog.LevelDebug)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) setLogs(msg logsMsg) {
	if msg.err != nil {
		m.logs.SetContent(m.styles.DangerText.Render(msg.err.Error()))
		return
	}
	atBottom := m.logs.AtBottom() || m.logs.TotalLineCount() == 0
	lines := make([]string, 0, len(msg.entries))
	for _, e := range msg.entries {
		lines = append(lines, m.formatLogEntry(e))
	}
	if len(lines) == 0 {
		lines = append(lines, m.styles.MutedText.Render("(log is empty)"))
	}
	m.logs.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.logs.GotoBottom()
	}
}

func (m Model) formatLogEntry(e logtail.Entry) string {
	if e.Time == "" {
		return m.styles.Text.Render(e.Message)
	}
	ts := e.Time
	if len(ts) >= 19 {
		ts = ts[11:19]
	}
	level := m.levelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level.String()))

	var attrs []string
	for _, a := range e.Attrs {
		attrs = append(attrs, m.styles.FaintText.Render(a.Key+"=")+m.styles.MutedText.Render(a.Value))
	}
	line := m.styles.MutedText.Render(ts) + " " + level + " " + m.styles.Text.Render(e.Message)
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}
	return line
}

func (m Model) levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return m.styles.DangerText
	case level >= slog.LevelWarn:
		return m.styles.WarningText
	case level >= slog.LevelInfo:
		return m.styles.InfoText
	default:
		return m.styles.FaintText
	}
}
