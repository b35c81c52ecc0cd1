// Package analysis composes normalization, scoring, insights and
// recommendations into a single AnalysisResult.
package analysis

import (
	"fmt"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/insights"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/recommend"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/risk"
	"github.com/j-veylop/screentime-dashboard-tui/internal/usage"
)

// Analyzer runs the analysis pipeline. It holds no per-call state and is safe
// for concurrent use as long as its Scorer is.
type Analyzer struct {
	scorer risk.Scorer
}

// New creates an Analyzer using scorer.
func New(scorer risk.Scorer) *Analyzer {
	return &Analyzer{scorer: scorer}
}

// AnalyzeRaw normalizes a day-indexed raw window and analyzes it.
func (a *Analyzer) AnalyzeRaw(raw any) (*models.AnalysisResult, error) {
	window, err := usage.NormalizeWindow(raw)
	if err != nil {
		return nil, err
	}
	return a.Analyze(window)
}

// Analyze scores a window of daily records, oldest first.
func (a *Analyzer) Analyze(window []models.DailyUsageRecord) (*models.AnalysisResult, error) {
	if len(window) == 0 {
		return nil, &usage.ValidationError{Reason: "usage window is empty"}
	}

	fv := usage.Aggregate(window)

	current, err := a.scorer.Score(fv)
	if err != nil {
		return nil, fmt.Errorf("failed to score window: %w", err)
	}

	found := insights.Analyze(fv)
	if found == nil {
		found = []models.Insight{}
	}

	viz, err := a.visualize(window)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		CurrentRisk:     current,
		Insights:        found,
		Recommendations: recommend.Generate(current.RiskLevel, found),
		Visualization:   viz,
	}, nil
}

func (a *Analyzer) visualize(window []models.DailyUsageRecord) (models.Visualization, error) {
	viz := models.Visualization{
		DailyTotals:     make([]int, len(window)),
		TimeOfDay:       make([][4]int, len(window)),
		RiskProgression: make([]models.RiskLevel, len(window)),
		CategoryTotals:  usage.CategoryTotals(window),
		TrendDirection:  usage.TrendDirection(window),
	}

	for i, day := range window {
		viz.DailyTotals[i] = day.TotalDuration
		viz.TimeOfDay[i] = day.TimeOfDay()

		daily, err := a.scorer.Score(usage.Aggregate([]models.DailyUsageRecord{day}))
		if err != nil {
			return viz, fmt.Errorf("failed to score day %d: %w", i, err)
		}
		viz.RiskProgression[i] = daily.RiskLevel
	}
	return viz, nil
}
