// Package dashboard provides the live usage tab for the token monitor.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/token-monitor-tui/internal/app"
	"github.com/j-veylop/token-monitor-tui/internal/ui/components"
)

const flashInterval = 500 * time.Millisecond

type flashTickMsg time.Time

func flashTickCmd() tea.Cmd {
	return tea.Tick(flashInterval, func(t time.Time) tea.Msg {
		return flashTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Refresh  key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	usageBar components.UsageBar
	width    int
	height   int

	// flashing is true while the urgent banner blinks.
	flashing bool
	flashOn  bool
	frame    int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Fetching usage from ccusage..."),
		usageBar: components.NewUsageBar(),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.syncUsage())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.UsageLoadedMsg, app.PeriodChangedMsg, app.AdaptiveToggledMsg:
		cmds = append(cmds, m.syncUsage())

	case app.TabSwitchMsg:
		if msg.Tab == app.TabDashboard {
			// Ticks sent while another tab was active never arrived.
			m.flashing = false
			cmds = append(cmds, m.usageBar.Resume(), m.syncUsage())
		}

	case flashTickMsg:
		cmds = append(cmds, m.handleFlashTick())

	case components.AnimationTickMsg, progress.FrameMsg:
		var cmd tea.Cmd
		m.usageBar, cmd = m.usageBar.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.frame++
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// syncUsage points the usage bar at the current assessment and starts the
// urgent banner flashing when needed.
func (m *Model) syncUsage() tea.Cmd {
	if !m.state.HasUsage() {
		return nil
	}
	a := m.state.Assessment()

	var cmds []tea.Cmd
	if a.Percentage != m.usageBar.Target() {
		cmds = append(cmds, m.usageBar.SetPercent(a.Percentage))
	}
	if a.Urgent && !m.flashing {
		m.flashing = true
		m.flashOn = true
		cmds = append(cmds, flashTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleFlashTick() tea.Cmd {
	if !m.state.Assessment().Urgent {
		m.flashing = false
		m.flashOn = false
		return nil
	}
	m.flashOn = !m.flashOn
	return flashTickCmd()
}

// handleKeyMsg forwards scroll keys to the viewport. Other keys belong to
// the app, so they never reach the viewport's own keymap.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown) {
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Down,
		m.keys.Up,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.PageUp, m.keys.PageDown},
		{m.keys.Refresh},
	}
}
