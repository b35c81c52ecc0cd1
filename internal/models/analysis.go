package models

import "time"

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// CategoryTotals holds per-category minutes summed over the window.
type CategoryTotals struct {
	Social        int `json:"social"`
	Entertainment int `json:"entertainment"`
	Productivity  int `json:"productivity"`
	Other         int `json:"other"`
}

// Visualization carries the aggregates a rendering layer needs.
type Visualization struct {
	DailyTotals     []int          `json:"daily_totals"`
	TimeOfDay       [][4]int       `json:"time_of_day"` // morning, afternoon, evening, night
	RiskProgression []RiskLevel    `json:"risk_progression"`
	CategoryTotals  CategoryTotals `json:"category_totals"`
	TrendDirection  string         `json:"trend_direction"`
}

// AnalysisResult is the single object returned by an analysis call.
type AnalysisResult struct {
	CurrentRisk     RiskAssessment `json:"current_risk"`
	Insights        []Insight      `json:"insights"`
	Recommendations []string       `json:"recommendations"`
	Visualization   Visualization  `json:"visualization"`
}

// StoredAnalysis is an AnalysisResult persisted for a user.
type StoredAnalysis struct {
	ID        string
	UserID    string
	Result    AnalysisResult
	CreatedAt time.Time
}

// WindowSummary summarizes a usage window for display.
type WindowSummary struct {
	TotalMinutes   int     `json:"total_minutes"`
	AverageMinutes float64 `json:"average_minutes"`
	BingeSessions  int     `json:"binge_sessions"`
	NightMinutes   int     `json:"night_minutes"`
	Days           int     `json:"days"`
}

// UserReport is an analysis of a user's most recent window together with the
// window it was computed from.
type UserReport struct {
	ID         string
	UserID     string
	Result     *AnalysisResult
	Window     []DailyUsageRecord
	Summary    WindowSummary
	AnalyzedAt time.Time
}
