// Package trends provides the trends tab: the current window broken down by
// day, time of day and category, and the stored analysis history.
package trends

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/app"
)

// historyRanges are the selectable history sizes, in stored analyses.
var historyRanges = []int{7, 30, 90}

// keyMap defines the key bindings specific to the trends tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the trends tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle history range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the trends tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	rangeIdx int
}

// New creates a new trends model.
func New(state *app.State, cmds *app.Commands) *Model {
	m := &Model{
		state:    state,
		commands: cmds,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		rangeIdx: 1,
	}
	for i, r := range historyRanges {
		if r == state.GetHistoryLimit() {
			m.rangeIdx = i
		}
	}
	return m
}

// Init initializes the trends tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) limit() int {
	return historyRanges[m.rangeIdx]
}

// loadHistory requests the history for the current user at the selected range.
func (m *Model) loadHistory() tea.Cmd {
	if m.commands == nil {
		return nil
	}
	cmd := m.commands.LoadHistory(m.state.GetUserID(), m.limit())
	if cmd != nil {
		m.state.SetLoading("history", true)
	}
	return cmd
}

// Update handles messages for the trends tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabTrends {
			return m, m.loadHistory()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleRange) {
		m.rangeIdx = (m.rangeIdx + 1) % len(historyRanges)
		m.state.SetHistoryLimit(m.limit())
		return m, m.loadHistory()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the trends tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
