package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
)

// Gauge gradient endpoints, low risk to high risk.
const (
	gaugeLowColor  = "#4CAF50"
	gaugeHighColor = "#D32F2F"
)

// RiskGauge renders a probability bar colored from safe to critical.
type RiskGauge struct {
	progress progress.Model
}

// NewRiskGauge creates a gauge with a green to red gradient.
func NewRiskGauge() RiskGauge {
	p := progress.New(
		progress.WithScaledGradient(gaugeLowColor, gaugeHighColor),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return RiskGauge{progress: p}
}

// View renders the gauge at probability (0..1) with a label and the level's
// percentage in its color.
func (g RiskGauge) View(probability float64, level models.RiskLevel, label string, width int) string {
	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	g.progress.Width = barWidth

	probability = min(max(probability, 0), 1)
	bar := g.progress.ViewAs(probability)

	percentStr := styles.GetRiskStyle(level).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", probability*100))

	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gaugeLowColor, gaugeHighColor, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// UsageBar renders minutes used against a limit, e.g. the latest day total
// against the daily limit. The bar is full at twice the limit.
func UsageBar(minutes, limit int, label string, width int) string {
	labelWidth := len(label) + 1
	valueWidth := 12
	barWidth := max(width-labelWidth-valueWidth-4, 5)

	percent := 0.0
	if limit > 0 {
		percent = min(float64(minutes)/float64(2*limit)*100, 100)
	}

	valueStyle := styles.SuccessTextStyle
	if limit > 0 && minutes > limit {
		valueStyle = styles.ErrorTextStyle
	}

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	valueStr := valueStyle.Width(valueWidth).Align(lipgloss.Right).
		Render(fmt.Sprintf("%d/%d min", minutes, limit))

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(percent, barWidth), valueStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}

// LoadingBar renders an indeterminate shimmer bar for the given animation frame.
func LoadingBar(width, frame int) string {
	barWidth := max(width-4, 10)

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var barChars []string
	for i := 0; i < barWidth; i++ {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		switch {
		case dist < 3:
			barChars = append(barChars, lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			barChars = append(barChars, lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			barChars = append(barChars, lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	return "    " + strings.Join(barChars, "")
}
