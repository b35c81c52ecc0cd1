package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
)

// Clock cycles a clock face, one quarter per frame.
var Clock = spinner.Spinner{
	Frames: []string{"◴", "◷", "◶", "◵"},
	FPS:    time.Second / 6,
}

// loadingStages names what each loading resource is doing.
var loadingStages = map[string]string{
	"initial":  "reading sessions",
	"analysis": "scoring window",
	"history":  "loading past analyses",
	"stats":    "counting users",
}

// AnalysisSpinner shows a clock spinner with a label and the stages still
// in progress.
type AnalysisSpinner struct {
	spinner spinner.Model
	label   string
	stages  []string
	style   lipgloss.Style
}

// NewSpinner creates an AnalysisSpinner with the given label.
func NewSpinner(label string) AnalysisSpinner {
	s := spinner.New()
	s.Spinner = Clock
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return AnalysisSpinner{
		spinner: s,
		label:   label,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the spinner.
func (a AnalysisSpinner) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update advances the spinner on its tick messages.
func (a AnalysisSpinner) Update(msg tea.Msg) (AnalysisSpinner, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

// SetResources records the loading resources; unknown names are shown as-is.
func (a *AnalysisSpinner) SetResources(resources []string) {
	a.stages = a.stages[:0]
	for _, r := range resources {
		if stage, ok := loadingStages[r]; ok {
			a.stages = append(a.stages, stage)
		} else {
			a.stages = append(a.stages, r)
		}
	}
}

// ViewWithLabel renders the spinner, its label and the active stages below.
func (a AnalysisSpinner) ViewWithLabel() string {
	line := a.spinner.View() + " " + a.style.Render(a.label)
	if len(a.stages) == 0 {
		return line
	}
	detail := styles.HelpStyle.Render(strings.Join(a.stages, " · "))
	return lipgloss.JoinVertical(lipgloss.Center, line, detail)
}

// RenderSpinnerCentered renders a spinner centered in a given width and height.
func RenderSpinnerCentered(s AnalysisSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
