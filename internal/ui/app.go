package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gabbwatch/gabb"
	"github.com/gabbwatch/gabb/internal/config"
	"github.com/gabbwatch/gabb/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDevices View = iota
	ViewEvents
)

// noticeTTL is how long transient header notices stay visible.
const noticeTTL = 5 * time.Second

// locateTimeout bounds the locate request fired from the devices view.
const locateTimeout = 5 * time.Second

// Options configures the UI.
type Options struct {
	Context context.Context
	Client  *gabb.Client
	Store   *state.Store
	// RefreshEvery is the store re-read cadence; zero means one second.
	RefreshEvery time.Duration
	ThemeName    string
	PrefsPath    string
	// LogPath is surfaced in the header when the service is unreachable.
	LogPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    *gabb.Client
	store     *state.Store
	prefsPath string
	logPath   string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = table, 1 = detail

	// Data state
	snapshot state.Snapshot

	// Devices state
	selectedRow int

	// Events state
	eventsViewport viewport.Model

	// Transient notice shown in the header (locate results)
	notice    string
	noticeErr bool
	noticeAt  time.Time

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.RefreshEvery
	if tick == 0 {
		tick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = config.DefaultPrefsPath()
	}

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewDevices,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.tick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initEventsViewport()
		}
		m.ready = true
		m.updateDeviceTable()
		m.updateEventsViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.updateDeviceTable()
		m.updateEventsViewport()
		return m, nil

	case locateMsg:
		if msg.err != nil {
			m.notice = "locate failed: " + truncate(msg.err.Error(), 60)
			m.noticeErr = true
		} else {
			m.notice = "locate requested for " + msg.name
			m.noticeErr = false
		}
		m.noticeAt = time.Now()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes the help overlay
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Global keys
	switch msg.String() {
	case "ctrl+c", "e":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		// Cycle theme
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = config.SavePrefs(m.prefsPath, config.Prefs{Theme: m.theme.Name})
		}
		return m, nil

	case "tab":
		m.toggleFocus()
		return m, nil

	case "shift+tab":
		m.toggleFocusReverse()
		return m, nil

	case "d":
		m.currentView = ViewDevices
		return m, nil

	case "l":
		m.currentView = ViewEvents
		return m, nil

	case "esc":
		m.currentView = ViewDevices
		return m, nil
	}

	// View-specific keys
	switch m.currentView {
	case ViewDevices:
		return m.handleDevicesKey(msg)
	case ViewEvents:
		return m.handleEventsKey(msg)
	}

	return m, nil
}

// toggleFocus cycles focus forward through panes and views.
// Cycle: Devices(table) → Devices(detail) → Events → Devices(table)
func (m *Model) toggleFocus() {
	switch m.currentView {
	case ViewDevices:
		if m.focusedPane == 0 {
			m.focusedPane = 1
		} else {
			m.currentView = ViewEvents
			m.focusedPane = 0
		}
	case ViewEvents:
		m.currentView = ViewDevices
		m.focusedPane = 0
	}
}

// toggleFocusReverse cycles focus backward through panes and views.
func (m *Model) toggleFocusReverse() {
	switch m.currentView {
	case ViewDevices:
		if m.focusedPane == 1 {
			m.focusedPane = 0
		} else {
			m.currentView = ViewEvents
		}
	case ViewEvents:
		m.currentView = ViewDevices
		m.focusedPane = 1
	}
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Fetch latest snapshot
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	// Expire stale notices
	if m.notice != "" && time.Since(m.noticeAt) > noticeTTL {
		m.notice = ""
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.tick))

	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDevices:
		return m.renderDevices()
	case ViewEvents:
		return m.renderEvents()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type locateMsg struct {
	name string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// locateCmd asks the service to request a fresh position from the device.
// The new location shows up through a later poll once the watch has answered.
func locateCmd(ctx context.Context, client *gabb.Client, device gabb.MapDevice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, locateTimeout)
		defer cancel()
		err := client.RefreshMap(ctx, device.ID)
		return locateMsg{name: device.Name, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
