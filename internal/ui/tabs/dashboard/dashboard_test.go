package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/app"
	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

func newTestModel(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state, config.DefaultThresholds())
	m.SetSize(100, 80)
	return m, state
}

func highRiskReport() *models.UserReport {
	return &models.UserReport{
		UserID: "alice",
		Result: &models.AnalysisResult{
			CurrentRisk: models.RiskAssessment{
				RiskLevel:   models.RiskHigh,
				RiskLabel:   "High",
				Score:       5,
				Probability: 0.875,
				Method:      models.MethodRuleBased,
			},
			Insights: []models.Insight{
				{Category: models.CategoryNight, Message: "Heavy late-night usage", Severity: models.SeverityCritical},
			},
			Recommendations: []string{"Set a bedtime wind-down alarm"},
			Visualization: models.Visualization{
				DailyTotals:     []int{200, 280, 380},
				RiskProgression: []models.RiskLevel{models.RiskLow, models.RiskModerate, models.RiskHigh},
			},
		},
		Window: []models.DailyUsageRecord{
			{TotalDuration: 200}, {TotalDuration: 280}, {TotalDuration: 380, NightUsage: 95},
		},
		Summary: models.WindowSummary{TotalMinutes: 860, AverageMinutes: 286.7, Days: 3},
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), config.DefaultThresholds())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewState(), config.DefaultThresholds())
	m.SetSize(80, 24)
	view := m.View()
	if !strings.Contains(view, "Analyzing usage...") {
		t.Error("Initial view should show the spinner label")
	}
	if !strings.Contains(view, "reading sessions") {
		t.Error("Initial view should show the loading stage")
	}
}

func TestModel_View_Empty(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	if !strings.Contains(view, "No analysis yet") {
		t.Logf("View content: %q", view)
		t.Error("View should show the empty state")
	}
}

func TestModel_View_Report(t *testing.T) {
	m, state := newTestModel(t)
	state.SetReport(highRiskReport())

	view := m.View()
	for _, want := range []string{
		"HIGH",
		"Score 5",
		"rule-based",
		"Heavy late-night usage",
		"Set a bedtime wind-down alarm",
		"Today",
		"Last 3 Days",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestModel_View_NoInsights(t *testing.T) {
	m, state := newTestModel(t)
	report := highRiskReport()
	report.Result.Insights = nil
	state.SetReport(report)

	if !strings.Contains(m.View(), "No concerning patterns detected") {
		t.Error("View should note that no patterns were found")
	}
}

func TestModel_GaugeAnimation(t *testing.T) {
	m, state := newTestModel(t)
	state.SetReport(highRiskReport())

	start := time.Now()
	if cmd := m.handleAnimationTick(animationTickMsg(start)); cmd == nil {
		t.Error("Expected animation to continue")
	}
	if m.probability.TargetPercent != 87.5 {
		t.Errorf("Expected target 87.5, got %v", m.probability.TargetPercent)
	}

	mid := start.Add(750 * time.Millisecond)
	m.handleAnimationTick(animationTickMsg(mid))
	if m.probability.CurrentPercent <= 0 || m.probability.CurrentPercent >= 87.5 {
		t.Errorf("Expected gauge between 0 and 87.5 mid-animation, got %v", m.probability.CurrentPercent)
	}

	end := start.Add(2 * time.Second)
	if cmd := m.handleAnimationTick(animationTickMsg(end)); cmd != nil {
		t.Error("Expected animation to stop once settled")
	}
	if m.probability.CurrentPercent != 87.5 {
		t.Errorf("Expected gauge at 87.5, got %v", m.probability.CurrentPercent)
	}
}

func TestModel_AnimationWaitsForReport(t *testing.T) {
	m, _ := newTestModel(t)
	if cmd := m.handleAnimationTick(animationTickMsg(time.Now())); cmd == nil {
		t.Error("Expected animation to keep ticking until a report arrives")
	}
}

func TestModel_Update(t *testing.T) {
	m, state := newTestModel(t)
	state.SetReport(highRiskReport())

	updated, cmd := m.Update(app.AnalysisLoadedMsg{Report: state.GetReport()})
	if updated == nil {
		t.Fatal("Update returned nil model")
	}
	if cmd == nil {
		t.Error("Expected animation tick command")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "never"},
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{90 * time.Minute, "1h30m ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
