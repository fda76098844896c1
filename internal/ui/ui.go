package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/offerwatch/internal/engine"
	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/prefs"
)

// Engine is the part of *engine.Engine the UI drives.
type Engine interface {
	Changed() <-chan struct{}
	View() engine.View

	RefreshSession()
	Logout()
	SetFilter(filter offerapi.Filter)
	Reload()
	RefreshOffer(id int64)
	MarkRead(id int64, read bool)
	UpdateStatus(id int64, status offerapi.Status)
	Confirm(id int64)
	ConfirmAll()
}

var _ Engine = (*engine.Engine)(nil)

// Options configure the UI runtime.
type Options struct {
	Engine    Engine
	Prefs     prefs.Prefs
	PrefsPath string // empty disables saving
	LogPath   string
	Logger    *slog.Logger
}

// Run starts the full-screen program and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
