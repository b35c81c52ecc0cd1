package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/screentime-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderThresholdsCard(),
		m.renderModelCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) card(title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, body...),
	)
}

func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}

	apiAddr := m.config.APIAddr
	if apiAddr == "" {
		apiAddr = "disabled"
	}

	return m.card("Configuration",
		renderRow("Database", m.config.DatabasePath),
		renderRow("Model File", m.config.ModelPath),
		renderRow("User", m.config.UserID),
		renderRow("Window", fmt.Sprintf("%d days", m.config.WindowDays)),
		renderRow("Refresh", m.config.RefreshInterval.String()),
		renderRow("API Address", apiAddr),
	)
}

func (m *Model) renderThresholdsCard() string {
	if m.config == nil {
		return ""
	}
	t := m.config.Thresholds

	return m.card("Scoring Thresholds",
		renderRow("Heavy Day", fmt.Sprintf("> %d min  (+%d)", t.HeavyLimitMinutes, t.HeavyUsagePoints)),
		renderRow("Long Day", fmt.Sprintf("> %d min  (+%d)", t.DailyLimitMinutes, t.DailyUsagePoints)),
		renderRow("Night Usage", fmt.Sprintf("> %d min  (+%d)", t.NightLimitMinutes, t.NightUsagePoints)),
		renderRow("Binge Count", fmt.Sprintf("> %d sessions  (+%d)", t.BingeCountLimit, t.BingePoints)),
		renderRow("Binge Session", fmt.Sprintf("> %d min", t.BingeSessionMinutes)),
	)
}

func (m *Model) renderModelCard() string {
	status := m.state.GetModelStatus()

	var rows []string
	if status.Loaded {
		rows = append(rows,
			renderRow("Status", styles.SuccessTextStyle.Render("● trained model loaded")),
			renderRow("Source", status.Source),
			renderRow("Min Confidence", fmt.Sprintf("%.2f", status.MinConfidence)),
		)
	} else {
		rows = append(rows,
			renderRow("Status", styles.WarningTextStyle.Render("○ rule-based scoring")),
		)
		if m.config != nil {
			rows = append(rows, styles.HelpStyle.Render("Place a model file at "+m.config.ModelPath+" to enable it"))
		}
	}

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows, "", fmt.Sprintf("Tracked users: %s",
			styles.InfoTextStyle.Render(fmt.Sprintf("%d", stats.UserCount))))
	}

	return m.card("Risk Model", rows...)
}

func (m *Model) renderAboutCard() string {
	return m.card("About Screen Time Dashboard",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
