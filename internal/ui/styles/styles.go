// Package styles defines the visual styling for the application.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// Color definitions for the dashboard theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Usage category colors
	Social        = lipgloss.Color("205")
	Entertainment = lipgloss.Color("208")
	Productivity  = lipgloss.Color("42")
	Other         = lipgloss.Color("245")

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// ProgressPercentStyle styles the percentage display.
var ProgressPercentStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Width(6).
	Align(lipgloss.Right)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// RiskBadgeStyle is the base for risk level badges.
var RiskBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Padding(0, 1)

// SeverityCriticalStyle for critical insights.
var SeverityCriticalStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// SeverityWarningStyle for warning insights.
var SeverityWarningStyle = lipgloss.NewStyle().
	Foreground(Warning)

// SeverityInfoStyle for informational insights.
var SeverityInfoStyle = lipgloss.NewStyle().
	Foreground(Info)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// RiskCardStyle frames the current risk assessment.
var RiskCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Secondary).
	Padding(1, 2).
	MarginBottom(1)

// RiskColor returns the display color for a risk level.
func RiskColor(level models.RiskLevel) lipgloss.Color {
	return lipgloss.Color(level.Color())
}

// RiskBadge renders the level label on a background of its color.
func RiskBadge(level models.RiskLevel) string {
	return RiskBadgeStyle.Background(RiskColor(level)).Render(strings.ToUpper(level.String()))
}

// GetRiskStyle returns a foreground style in the level's color.
func GetRiskStyle(level models.RiskLevel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(RiskColor(level)).Bold(level >= models.RiskHigh)
}

// GetSeverityStyle returns the style for an insight severity.
func GetSeverityStyle(sev models.Severity) lipgloss.Style {
	switch sev {
	case models.SeverityCritical:
		return SeverityCriticalStyle
	case models.SeverityWarning:
		return SeverityWarningStyle
	default:
		return SeverityInfoStyle
	}
}

// CategoryColor returns the chart color for a usage category.
func CategoryColor(category string) lipgloss.Color {
	switch category {
	case "social":
		return Social
	case "entertainment":
		return Entertainment
	case "productivity":
		return Productivity
	default:
		return Other
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
