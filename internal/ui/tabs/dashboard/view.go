package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	sections := []string{m.renderTitle()}

	report := m.state.GetReport()
	if report == nil || report.Result == nil {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections,
			m.renderRiskCard(report),
			m.renderSummaryCard(report),
			m.renderInsightsCard(report.Result.Insights),
			m.renderRecommendationsCard(report.Result.Recommendations),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	m.spinner.SetResources(m.state.GetLoadingResources())
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Screen Time Dashboard")

	user := m.state.GetUserID()
	if user == "" {
		user = "unknown user"
	}
	subtitle := styles.HelpStyle.Render("Addiction risk analysis for " + user)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderEmpty() string {
	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		cardHeader("Current Risk"),
		"",
		fmt.Sprintf("  %s %s", icon, styles.HelpStyle.Render("No analysis yet")),
		"",
		styles.InfoTextStyle.Render("  ╰─▶ Import usage with `sdt import <file>` or POST /api/usage"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func cardHeader(title string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	return fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render(title))
}

func (m *Model) renderRiskCard(report *models.UserReport) string {
	current := report.Result.CurrentRisk
	width := m.cardWidth() - 6

	header := fmt.Sprintf("%s  %s", cardHeader("Current Risk"), styles.RiskBadge(current.RiskLevel))

	details := styles.HelpStyle.Render(fmt.Sprintf("Score %d  ·  %s  ·  updated %s",
		current.Score, current.Method, formatAge(m.state.TimeSinceUpdate())))

	gauge := m.gauge.View(m.probability.CurrentPercent/100, current.RiskLevel, "Probability", width)

	rows := []string{header, "", gauge, "", details}

	if progression := report.Result.Visualization.RiskProgression; len(progression) > 0 {
		rows = append(rows, fmt.Sprintf("%s %s",
			styles.HelpStyle.Render("Daily levels"),
			components.RenderRiskStrip(progression)))
	}

	return styles.RiskCardStyle.
		BorderForeground(styles.RiskColor(current.RiskLevel)).
		Width(m.cardWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSummaryCard(report *models.UserReport) string {
	width := m.cardWidth() - 6
	summary := report.Summary

	rows := []string{cardHeader(fmt.Sprintf("Last %d Days", summary.Days)), ""}

	if n := len(report.Window); n > 0 {
		latest := report.Window[n-1]
		rows = append(rows,
			components.UsageBar(latest.TotalDuration, m.thresholds.DailyLimitMinutes, "Today ", width),
			components.UsageBar(latest.NightUsage, m.thresholds.NightLimitMinutes, "Night ", width),
			"",
		)
	}

	stats := []string{
		statCell("Total", fmt.Sprintf("%d min", summary.TotalMinutes)),
		statCell("Daily avg", fmt.Sprintf("%.0f min", summary.AverageMinutes)),
		statCell("Binges", fmt.Sprintf("%d", summary.BingeSessions)),
		statCell("Night", fmt.Sprintf("%d min", summary.NightMinutes)),
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, stats...))

	if totals := report.Result.Visualization.DailyTotals; len(totals) > 0 {
		values := make([]float64, len(totals))
		for i, v := range totals {
			values[i] = float64(v)
		}
		rows = append(rows, "", components.RenderBarChart(values, components.DayLabels(len(totals)), width))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func statCell(label, value string) string {
	return lipgloss.NewStyle().Width(16).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			styles.HelpStyle.Render(label),
			lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).Render(value),
		),
	)
}

func (m *Model) renderInsightsCard(insights []models.Insight) string {
	rows := []string{cardHeader("Insights"), ""}

	if len(insights) == 0 {
		rows = append(rows, "  "+styles.SuccessTextStyle.Render("● No concerning patterns detected"))
	}
	for _, in := range insights {
		style := styles.GetSeverityStyle(in.Severity)
		rows = append(rows, fmt.Sprintf("  %s %s",
			style.Render(severityIcon(in.Severity)),
			style.Render(in.Message)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func severityIcon(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return "▲"
	case models.SeverityWarning:
		return "◆"
	default:
		return "●"
	}
}

func (m *Model) renderRecommendationsCard(recs []string) string {
	rows := []string{cardHeader("Recommendations"), ""}
	for i, r := range recs {
		num := lipgloss.NewStyle().Foreground(styles.Secondary).Render(fmt.Sprintf("%d.", i+1))
		rows = append(rows, fmt.Sprintf("  %s %s", num, r))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatAge(d time.Duration) string {
	switch {
	case d <= 0:
		return "never"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return strings.TrimSuffix(d.Truncate(time.Minute).String(), "0s") + " ago"
	}
}
