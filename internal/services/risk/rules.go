// Package risk scores usage feature vectors into addiction-risk assessments.
package risk

import (
	"math"

	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// Scorer turns a feature vector into a risk assessment.
type Scorer interface {
	Score(fv models.FeatureVector) (models.RiskAssessment, error)
}

// Probability curve of the rule scorer. This is a monotonic heuristic, not a
// calibrated probability.
const (
	baseProbability    = 0.5
	probabilityPerPt   = 0.075
	maxRuleProbability = 0.95
)

// RuleScorer accumulates points for threshold crossings. It is always available.
type RuleScorer struct {
	t config.Thresholds
}

// NewRuleScorer creates a rule scorer using the given thresholds.
func NewRuleScorer(t config.Thresholds) *RuleScorer {
	return &RuleScorer{t: t}
}

// Points returns the raw point total for fv.
func (r *RuleScorer) Points(fv models.FeatureVector) int {
	points := 0

	switch {
	case fv.LatestTotal > r.t.HeavyLimitMinutes:
		points += r.t.HeavyUsagePoints
	case fv.LatestTotal > r.t.DailyLimitMinutes:
		points += r.t.DailyUsagePoints
	}

	if fv.LatestNight > r.t.NightLimitMinutes {
		points += r.t.NightUsagePoints
	}

	if fv.BingeTotal > r.t.BingeCountLimit {
		points += r.t.BingePoints
	}

	return points
}

// Score implements Scorer.
func (r *RuleScorer) Score(fv models.FeatureVector) (models.RiskAssessment, error) {
	score := r.Points(fv)
	level := LevelForScore(score)
	return models.RiskAssessment{
		RiskLevel:   level,
		RiskLabel:   level.String(),
		Score:       score,
		Probability: ProbabilityForScore(score),
		Method:      models.MethodRuleBased,
	}, nil
}

// LevelForScore maps a point total onto a risk level. Each range includes its
// lower bound: 0-1 Low, 2-3 Moderate, 4-5 High, 6+ Critical.
func LevelForScore(score int) models.RiskLevel {
	switch {
	case score >= 6:
		return models.RiskCritical
	case score >= 4:
		return models.RiskHigh
	case score >= 2:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

// ProbabilityForScore maps a point total onto [0.5, 0.95].
func ProbabilityForScore(score int) float64 {
	if score < 0 {
		score = 0
	}
	return math.Min(maxRuleProbability, baseProbability+probabilityPerPt*float64(score))
}
