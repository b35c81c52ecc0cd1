// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/styles"
)

// ChartColors defines colors for chart elements.
var (
	ChartTotalColor = lipgloss.Color("#7D56F4")
	ChartNightColor = lipgloss.Color("#4285f4")
)

// TimeOfDayLabels name the buckets of a time-of-day breakdown, in order.
var TimeOfDayLabels = [4]string{"Morning", "Afternoon", "Evening", "Night"}

// DayLabels names n window days, oldest first, ending with "Today".
func DayLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		back := n - 1 - i
		if back == 0 {
			labels[i] = "Today"
		} else {
			labels[i] = fmt.Sprintf("D-%d", back)
		}
	}
	return labels
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// asciigraph needs two points to draw a line
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderDualLineChart plots daily total minutes against night minutes.
func RenderDualLineChart(totals, night []float64, width, height int, caption string) string {
	if len(totals) == 0 && len(night) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// Normalize lengths - pad shorter array with zeros
	maxLen := max(len(totals), len(night), 2)

	totalData := make([]float64, maxLen)
	nightData := make([]float64, maxLen)
	copy(totalData, totals)
	copy(nightData, night)
	if len(totals) == 1 {
		totalData[1] = totalData[0]
	}
	if len(night) == 1 {
		nightData[1] = nightData[0]
	}

	return asciigraph.PlotMany([][]float64{totalData, nightData},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.Red,
			asciigraph.Blue,
		),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	barWidth := width - maxLabelLen - 10 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, label)

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)

		bar := strings.Repeat("█", barLen)
		lines = append(lines, paddedLabel+" │"+bar+fmt.Sprintf(" %.0f", v))
	}

	return strings.Join(lines, "\n")
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderTimeOfDayHeatmap renders one row per day with a block per
// time-of-day bucket, shaded by minutes relative to the busiest bucket.
func RenderTimeOfDayHeatmap(days [][4]int, dayLabels []string) string {
	if len(days) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	maxVal := 0
	for _, d := range days {
		for _, v := range d {
			maxVal = max(maxVal, v)
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	labelWidth := 0
	for _, l := range dayLabels {
		labelWidth = max(labelWidth, len(l))
	}

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelWidth+1))
	for _, l := range TimeOfDayLabels {
		header.WriteString(fmt.Sprintf(" %-5s", l[:3]))
	}

	lines := []string{styles.HelpStyle.Render(header.String())}
	for i, d := range days {
		label := ""
		if i < len(dayLabels) {
			label = dayLabels[i]
		}

		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s ", labelWidth, label))
		for _, v := range d {
			intensity := min(v*(len(HeatmapBlocks)-1)/maxVal, len(HeatmapBlocks)-1)
			if v > 0 && intensity == 0 {
				intensity = 1
			}
			row.WriteString(" " + heatStyle(intensity).Render(strings.Repeat(string(HeatmapBlocks[intensity]), 3)) + "  ")
		}
		lines = append(lines, row.String())
	}

	return strings.Join(lines, "\n")
}

func heatStyle(intensity int) lipgloss.Style {
	switch intensity {
	case 0:
		return lipgloss.NewStyle().Foreground(styles.Subtle)
	case 1:
		return lipgloss.NewStyle().Foreground(styles.Success)
	case 2:
		return lipgloss.NewStyle().Foreground(styles.Warning)
	default:
		return lipgloss.NewStyle().Foreground(styles.Error)
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderRiskStrip renders one block per level, each in its level color and
// height, so a risk progression reads left to right.
func RenderRiskStrip(levels []models.RiskLevel) string {
	if len(levels) == 0 {
		return ""
	}

	var result strings.Builder
	for _, l := range levels {
		idx := 0
		if l.Valid() {
			idx = int(l) * (len(sparkChars) - 1) / (models.RiskLevelCount - 1)
		}
		result.WriteString(styles.GetRiskStyle(l).Render(string(sparkChars[idx])))
	}
	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
