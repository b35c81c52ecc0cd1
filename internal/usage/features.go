package usage

import "github.com/j-veylop/screentime-dashboard-tui/internal/models"

// Aggregate reduces a window of daily records, oldest first, into a feature
// vector. An empty window yields the zero vector.
func Aggregate(window []models.DailyUsageRecord) models.FeatureVector {
	fv := models.FeatureVector{
		Days:        len(window),
		DailyTotals: make([]int, len(window)),
	}
	if len(window) == 0 {
		return fv
	}

	var total, social, entertainment, productivity int
	for i, day := range window {
		fv.DailyTotals[i] = day.TotalDuration
		fv.BingeTotal += day.BingeSessions
		fv.NightTotal += day.NightUsage
		total += day.TotalDuration
		social += day.SocialMediaTime
		entertainment += day.EntertainmentTime
		productivity += day.ProductivityTime
	}

	first, last := window[0], window[len(window)-1]
	fv.LatestTotal = last.TotalDuration
	fv.LatestNight = last.NightUsage
	fv.AverageDaily = float64(total) / float64(len(window))
	fv.DeltaPerDay = float64(last.TotalDuration-first.TotalDuration) / float64(max(1, len(window)-1))

	if total > 0 {
		fv.SocialRatio = float64(social) / float64(total)
		fv.EntertainmentRatio = float64(entertainment) / float64(total)
		fv.ProductivityRatio = float64(productivity) / float64(total)
	}
	return fv
}

// Summarize returns display totals for a window.
func Summarize(window []models.DailyUsageRecord) models.WindowSummary {
	s := models.WindowSummary{Days: len(window)}
	for _, day := range window {
		s.TotalMinutes += day.TotalDuration
		s.BingeSessions += day.BingeSessions
		s.NightMinutes += day.NightUsage
	}
	if s.Days > 0 {
		s.AverageMinutes = float64(s.TotalMinutes) / float64(s.Days)
	}
	return s
}

// TrendDirection compares the newest day against the oldest.
func TrendDirection(window []models.DailyUsageRecord) string {
	if len(window) < 2 {
		return models.TrendStable
	}
	first, last := window[0].TotalDuration, window[len(window)-1].TotalDuration
	switch {
	case last > first:
		return models.TrendIncreasing
	case last < first:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// CategoryTotals sums per-category minutes over the window.
func CategoryTotals(window []models.DailyUsageRecord) models.CategoryTotals {
	var c models.CategoryTotals
	for _, day := range window {
		c.Social += day.SocialMediaTime
		c.Entertainment += day.EntertainmentTime
		c.Productivity += day.ProductivityTime
		c.Other += day.OtherTime
	}
	return c
}
