// Package recommend maps a risk level and active insights to suggestions.
package recommend

import "github.com/j-veylop/screentime-dashboard-tui/internal/models"

// HealthyFallback is returned when nothing else applies.
const HealthyFallback = "Maintain current healthy usage patterns"

// baseline recommendations per risk level.
var baseline = map[models.RiskLevel][]string{
	models.RiskLow: {},
	models.RiskModerate: {
		"Review your daily screen time each evening",
		"Set daily usage limits (max 3-4 hours)",
	},
	models.RiskHigh: {
		"Set daily usage limits (max 3-4 hours)",
		"Enable app timers for social media",
		"Schedule device-free hours",
	},
	models.RiskCritical: {
		"Set daily usage limits (max 3-4 hours)",
		"Enable app timers for social media",
		"Schedule device-free hours",
		"Consider a short digital detox and talk to someone you trust",
	},
}

// byCategory holds the insight-specific suggestion for each detector.
var byCategory = map[string]string{
	models.CategoryBinge:  "Enable app session timers",
	models.CategoryNight:  "Avoid screens 1 hour before bedtime",
	models.CategorySocial: "Enable app timers for social media",
	models.CategoryTrend:  "Set a weekly screen-time goal to reverse the upward trend",
}

// Generate returns the ordered, de-duplicated recommendations: the level's
// baseline first, then one per insight in the given order.
func Generate(level models.RiskLevel, insights []models.Insight) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, s := range baseline[level] {
		add(s)
	}
	for _, in := range insights {
		add(byCategory[in.Category])
	}

	if len(out) == 0 {
		out = append(out, HealthyFallback)
	}
	return out
}
