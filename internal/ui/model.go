package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/offerwatch/internal/engine"
	"github.com/five82/offerwatch/internal/offerapi"
	"github.com/five82/offerwatch/internal/prefs"
)

type viewMode int

const (
	modeList viewMode = iota
	modeDetail
	modeLogs
)

const refreshEvery = 500 * time.Millisecond

type (
	changedMsg struct{}
	tickMsg    time.Time
)

// Model is the bubbletea model for the offer dashboard.
type Model struct {
	engine    Engine
	logger    *slog.Logger
	prefs     prefs.Prefs
	prefsPath string
	logPath   string

	keys    keyMap
	help    help.Model
	theme   Theme
	styles  Styles
	spinner spinner.Model
	search  textinput.Model
	logs    viewport.Model

	view      engine.View
	mode      viewMode
	searching bool
	showHelp  bool
	cursor    int
	detailID  int64
	width     int
	height    int
}

// New builds the model. The engine must already be running or about to.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := GetTheme(opts.Prefs.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "company or position"
	ti.CharLimit = 64

	m := Model{
		engine:    opts.Engine,
		logger:    logger.With(slog.String("component", "ui")),
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		search:    ti,
		logs:      viewport.New(80, 20),
	}
	m.applyTheme(theme)
	if opts.Engine != nil {
		m.view = opts.Engine.View()
	}
	return m
}

func (m *Model) applyTheme(t Theme) {
	m.theme = t
	m.styles = t.Styles()
	m.spinner.Style = m.styles.AccentText
	m.search.PromptStyle = m.styles.AccentText
	m.search.TextStyle = m.styles.Text
}

// Init starts the change listener, the redraw tick and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.engine.Changed()), tick(), m.spinner.Tick)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles engine changes, timers and keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logs.Width = msg.Width - 2
		m.logs.Height = max(m.bodyHeight()-2, 1)
		m.help.Width = msg.Width
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.engine.Changed())

	case tickMsg:
		// Notices expire on their own timer; redraw picks that up.
		m.refresh()
		if m.mode == modeLogs {
			return m, tea.Batch(tick(), loadLogs(m.logPath))
		}
		return m, tick()

	case logsMsg:
		m.setLogs(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.view = m.engine.View()
	m.cursor = clamp(m.cursor, 0, len(m.view.Snapshot.Offers)-1)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, k.Escape):
		m.showHelp = false
		m.mode = modeList
		return m, nil
	case key.Matches(msg, k.CycleTheme):
		m.applyTheme(GetTheme(NextTheme(m.theme.Name)))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil
	case key.Matches(msg, k.Logs):
		if m.mode == modeLogs {
			m.mode = modeList
			return m, nil
		}
		m.mode = modeLogs
		return m, loadLogs(m.logPath)
	case key.Matches(msg, k.Session):
		m.engine.RefreshSession()
		return m, nil
	case key.Matches(msg, k.Logout):
		m.engine.Logout()
		return m, nil
	}

	if m.mode == modeLogs {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, k.Up):
		m.move(-1)
	case key.Matches(msg, k.Down):
		m.move(1)
	case key.Matches(msg, k.PageUp):
		m.move(-m.pageSize())
	case key.Matches(msg, k.PageDown):
		m.move(m.pageSize())
	case key.Matches(msg, k.Top):
		m.move(-len(m.view.Snapshot.Offers))
	case key.Matches(msg, k.Bottom):
		m.move(len(m.view.Snapshot.Offers))
	case key.Matches(msg, k.Reload):
		m.engine.Reload()
	case key.Matches(msg, k.CycleStatus):
		f := m.view.Snapshot.Filter
		f.Status = nextStatus(f.Status)
		m.applyFilter(f)
	case key.Matches(msg, k.CycleRead):
		f := m.view.Snapshot.Filter
		f.Read = nextRead(f.Read)
		m.applyFilter(f)
	case key.Matches(msg, k.Search):
		m.searching = true
		m.search.SetValue(m.view.Snapshot.Filter.Keyword)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, k.Open):
		if o, ok := m.selected(); ok {
			m.mode = modeDetail
			m.detailID = o.ID
			m.engine.RefreshOffer(o.ID)
		}
	case key.Matches(msg, k.ToggleRead):
		if o, ok := m.selected(); ok {
			m.engine.MarkRead(o.ID, !o.Read)
		}
	case key.Matches(msg, k.AdvanceStep):
		if o, ok := m.selected(); ok {
			m.engine.UpdateStatus(o.ID, o.Status.Next())
		}
	case key.Matches(msg, k.Confirm):
		if o, ok := m.selected(); ok {
			m.engine.Confirm(o.ID)
		}
	case key.Matches(msg, k.ConfirmAll):
		m.engine.ConfirmAll()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.searching = false
		m.search.Blur()
		f := m.view.Snapshot.Filter
		f.Keyword = strings.TrimSpace(m.search.Value())
		m.applyFilter(f)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter(f offerapi.Filter) {
	m.engine.SetFilter(f)
	m.view.Snapshot.Filter = f
	m.cursor = 0
	m.prefs.Filter = prefs.Saved(f)
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", slog.String("error", err.Error()))
	}
}

func (m *Model) move(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, len(m.view.Snapshot.Offers)-1)
}

func (m Model) pageSize() int {
	return max(m.bodyHeight()-3, 1)
}

func (m Model) selected() (offerapi.Offer, bool) {
	offers := m.view.Snapshot.Offers
	if m.cursor < 0 || m.cursor >= len(offers) {
		return offerapi.Offer{}, false
	}
	return offers[m.cursor], true
}

// detailOffer follows the opened id even if the list reorders.
func (m Model) detailOffer() (offerapi.Offer, bool) {
	for _, o := range m.view.Snapshot.Offers {
		if o.ID == m.detailID {
			return o, true
		}
	}
	return offerapi.Offer{}, false
}

// bodyHeight is what remains after the header, filter bar and footer.
func (m Model) bodyHeight() int {
	return max(m.height-3, 3)
}
