package trends

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
)

// maxTableRows caps the history table; the charts use the full range.
const maxTableRows = 10

// View renders the trends tab.
func (m *Model) View() string {
	report := m.state.GetReport()
	history := m.state.GetHistory()

	if report == nil && len(history) == 0 {
		if m.state.Loading.History || m.state.IsInitialLoading() {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}

	sections := []string{m.renderHeader()}
	if report != nil && report.Result != nil {
		sections = append(sections,
			m.renderUsageChart(report.Result.Visualization),
			m.renderTimeOfDay(report.Result.Visualization),
			m.renderCategories(report.Result.Visualization.CategoryTotals),
		)
	}
	sections = append(sections, m.renderHistory(history))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading trends..."))
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Trends"),
		"",
		styles.HelpStyle.Render("No usage has been analyzed yet."),
		styles.HelpStyle.Render("Trends will appear once sessions are logged."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func cardTitle(icon, title string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	return fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
}

func indent(block string) []string {
	var lines []string
	for line := range strings.SplitSeq(block, "\n") {
		lines = append(lines, "  "+line)
	}
	return lines
}

func (m *Model) renderHeader() string {
	user := m.state.GetUserID()
	if len(user) > 40 {
		user = user[:37] + "..."
	}
	title := styles.TitleStyle.Render("Trends: " + user)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] Last %d analyses", m.limit()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)
	return lipgloss.JoinVertical(lipgloss.Left, header, "")
}

func (m *Model) renderUsageChart(viz models.Visualization) string {
	cardWidth := m.cardWidth()
	rows := []string{cardTitle("📈", "Daily Usage"), ""}

	if len(viz.DailyTotals) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No daily data available"))
	} else {
		totals := make([]float64, len(viz.DailyTotals))
		night := make([]float64, len(viz.TimeOfDay))
		for i, v := range viz.DailyTotals {
			totals[i] = float64(v)
		}
		for i, tod := range viz.TimeOfDay {
			night[i] = float64(tod[3])
		}

		chart := components.RenderDualLineChart(totals, night, max(cardWidth-12, 30), 8,
			fmt.Sprintf("Last %d days - total vs night minutes", len(totals)))
		rows = append(rows, indent(chart)...)

		rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
			{Label: "Total", Color: components.ChartTotalColor},
			{Label: "Night", Color: components.ChartNightColor},
		}))
	}

	rows = append(rows, "", "  "+renderTrend(viz.TrendDirection))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderTrend(direction string) string {
	switch direction {
	case models.TrendIncreasing:
		return "Trend: " + styles.ErrorTextStyle.Render("▲ increasing")
	case models.TrendDecreasing:
		return "Trend: " + styles.SuccessTextStyle.Render("▼ decreasing")
	case models.TrendStable:
		return "Trend: " + styles.InfoTextStyle.Render("● stable")
	default:
		return "Trend: " + styles.HelpStyle.Render("not enough data")
	}
}

func (m *Model) renderTimeOfDay(viz models.Visualization) string {
	rows := []string{cardTitle("🕐", "Time of Day"), ""}

	if len(viz.TimeOfDay) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No time-of-day data available"))
	} else {
		heatmap := components.RenderTimeOfDayHeatmap(viz.TimeOfDay, components.DayLabels(len(viz.TimeOfDay)))
		rows = append(rows, indent(heatmap)...)

		var sums [4]int
		for _, day := range viz.TimeOfDay {
			for i, v := range day {
				sums[i] += v
			}
		}
		peak := 0
		for i := range sums {
			if sums[i] > sums[peak] {
				peak = i
			}
		}
		rows = append(rows, "", fmt.Sprintf("  Busiest: %s (%d min)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(components.TimeOfDayLabels[peak]),
			sums[peak]))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCategories(totals models.CategoryTotals) string {
	rows := []string{cardTitle("📊", "Categories"), ""}

	values := []float64{
		float64(totals.Social),
		float64(totals.Entertainment),
		float64(totals.Productivity),
		float64(totals.Other),
	}
	labels := []string{"Social", "Entertainment", "Productivity", "Other"}

	rows = append(rows, indent(components.RenderBarChart(values, labels, max(m.cardWidth()-12, 30)))...)

	var legend []components.LegendItem
	for _, l := range labels {
		legend = append(legend, components.LegendItem{Label: l, Color: styles.CategoryColor(strings.ToLower(l))})
	}
	rows = append(rows, "", "  "+components.RenderLegend(legend))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderHistory shows stored analyses. history arrives newest first.
func (m *Model) renderHistory(history []models.StoredAnalysis) string {
	rows := []string{cardTitle("📅", "Risk History"), ""}

	if len(history) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No stored analyses yet"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if len(history) > m.limit() {
		history = history[:m.limit()]
	}

	levels := make([]models.RiskLevel, len(history))
	scores := make([]float64, len(history))
	for i := range history {
		current := history[len(history)-1-i].Result.CurrentRisk
		levels[i] = current.RiskLevel
		scores[i] = float64(current.Score)
	}

	rows = append(rows,
		fmt.Sprintf("  %s %s", styles.HelpStyle.Render("Levels"), components.RenderRiskStrip(levels)),
		fmt.Sprintf("  %s %s", styles.HelpStyle.Render("Scores"), components.RenderSparkline(scores, max(m.cardWidth()-20, 10))),
		"",
	)

	rows = append(rows, "  "+styles.TableHeaderStyle.Render(
		fmt.Sprintf("%-14s %-10s %5s %6s  %s", "When", "Level", "Score", "Prob", "Method")))

	for i, a := range history {
		if i >= maxTableRows {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more", len(history)-maxTableRows)))
			break
		}
		current := a.Result.CurrentRisk
		level := styles.GetRiskStyle(current.RiskLevel).Width(10).Render(current.RiskLevel.String())
		rows = append(rows, fmt.Sprintf("  %-14s %s %5d %5.0f%%  %s",
			a.CreatedAt.Local().Format("Jan 02 15:04"),
			level,
			current.Score,
			current.Probability*100,
			current.Method,
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
