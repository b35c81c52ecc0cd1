// Package dashboard provides the main dashboard tab: current risk, insights
// and recommendations for the tracked user.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/app"
	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/components"
)

const gaugeAnimationDuration = 1.5 // seconds

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	ScrollDown key.Binding
	ScrollUp   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Refresh    key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-analyze"),
		),
	}
}

// AnimationState tracks the state of an animation.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the dashboard tab state.
type Model struct {
	state          *app.State
	thresholds     config.Thresholds
	gauge          components.RiskGauge
	spinner        components.AnalysisSpinner
	keys           keyMap
	viewport       viewport.Model
	probability    AnimationState
	width          int
	height         int
	animationFrame int
}

// New creates a new dashboard model. Thresholds drive the usage bars.
func New(state *app.State, thresholds config.Thresholds) *Model {
	return &Model{
		state:      state,
		thresholds: thresholds,
		gauge:      components.NewRiskGauge(),
		spinner:    components.NewSpinner("Analyzing usage..."),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), animationTickCmd())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(msg))

	case app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case app.AnalysisLoadedMsg, app.RefreshMsg:
		m.syncAnimationTarget(time.Now())
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(msg animationTickMsg) tea.Cmd {
	m.animationFrame++
	now := time.Time(msg)

	pending := m.syncAnimationTarget(now)
	m.stepAnimation(now)

	animating := m.probability.CurrentPercent != m.probability.TargetPercent
	if animating || pending || m.state.AnyLoading() {
		return animationTickCmd()
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// syncAnimationTarget points the gauge at the current report's probability.
// It reports true while no report has arrived yet.
func (m *Model) syncAnimationTarget(now time.Time) bool {
	report := m.state.GetReport()
	if report == nil || report.Result == nil {
		return true
	}

	target := report.Result.CurrentRisk.Probability * 100
	if target != m.probability.TargetPercent {
		m.probability.StartPercent = m.probability.CurrentPercent
		m.probability.TargetPercent = target
		m.probability.StartTime = now
	}
	return false
}

func (m *Model) stepAnimation(now time.Time) {
	a := &m.probability
	if a.CurrentPercent == a.TargetPercent {
		return
	}

	elapsed := now.Sub(a.StartTime).Seconds()
	if elapsed >= gaugeAnimationDuration {
		a.CurrentPercent = a.TargetPercent
		return
	}

	progress := elapsed / gaugeAnimationDuration
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*ease
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ScrollDown,
		m.keys.ScrollUp,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ScrollDown, m.keys.ScrollUp},
		{m.keys.Top, m.keys.Bottom},
		{m.keys.Refresh},
	}
}
