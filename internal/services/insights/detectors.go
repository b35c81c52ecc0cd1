// Package insights detects behavioral patterns in a usage feature vector.
package insights

import (
	"fmt"
	"sort"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// Detector thresholds.
const (
	TrendWarningDelta    = 30.0 // minutes/day increase
	TrendMinDays         = 2
	NightWarningAverage  = 45.0 // minutes/day
	NightCriticalAverage = 90.0
	BingeWarningTotal    = 5
	BingeCriticalTotal   = 10
	SocialWarningRatio   = 0.4
)

// Detector inspects a feature vector and reports at most one insight.
type Detector struct {
	Category string
	Detect   func(fv models.FeatureVector) (models.Insight, bool)
}

// Detectors lists every detector in tie-break priority order.
var Detectors = []Detector{
	{models.CategoryBinge, DetectBinge},
	{models.CategoryNight, DetectNight},
	{models.CategorySocial, DetectSocial},
	{models.CategoryTrend, DetectTrend},
}

// Analyze runs all detectors and returns their insights ranked by severity,
// ties broken by detector priority.
func Analyze(fv models.FeatureVector) []models.Insight {
	type ranked struct {
		insight  models.Insight
		priority int
	}

	var found []ranked
	for i, d := range Detectors {
		if in, ok := d.Detect(fv); ok {
			found = append(found, ranked{in, i})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		ri, rj := found[i].insight.Severity.Rank(), found[j].insight.Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return found[i].priority < found[j].priority
	})

	out := make([]models.Insight, len(found))
	for i, r := range found {
		out[i] = r.insight
	}
	return out
}

// DetectTrend fires when daily usage rises by more than 30 minutes per day.
// It abstains with fewer than two days of data.
func DetectTrend(fv models.FeatureVector) (models.Insight, bool) {
	if fv.Days < TrendMinDays {
		logger.Debug("trend detector abstained: insufficient data", "days", fv.Days)
		return models.Insight{}, false
	}
	if fv.DeltaPerDay <= TrendWarningDelta {
		return models.Insight{}, false
	}
	return models.Insight{
		Category:         models.CategoryTrend,
		Message:          fmt.Sprintf("Screen time increasing by %.0f minutes per day", fv.DeltaPerDay),
		Severity:         models.SeverityWarning,
		SupportingMetric: fv.DeltaPerDay,
	}, true
}

// DetectNight fires on heavy average night-time usage.
func DetectNight(fv models.FeatureVector) (models.Insight, bool) {
	if fv.Days == 0 {
		return models.Insight{}, false
	}

	avg := fv.NightAverage()
	in := models.Insight{
		Category:         models.CategoryNight,
		SupportingMetric: avg,
	}
	switch {
	case avg >= NightCriticalAverage:
		in.Severity = models.SeverityCritical
		in.Message = fmt.Sprintf("Very high late-night usage: %.0f minutes per night", avg)
	case avg > NightWarningAverage:
		in.Severity = models.SeverityWarning
		in.Message = fmt.Sprintf("High late-night usage: %.0f minutes per night", avg)
	default:
		return models.Insight{}, false
	}
	return in, true
}

// DetectBinge fires on repeated long sessions over the window.
func DetectBinge(fv models.FeatureVector) (models.Insight, bool) {
	in := models.Insight{
		Category:         models.CategoryBinge,
		SupportingMetric: float64(fv.BingeTotal),
	}
	switch {
	case fv.BingeTotal > BingeCriticalTotal:
		in.Severity = models.SeverityCritical
		in.Message = fmt.Sprintf("Excessive binge usage: %d long sessions", fv.BingeTotal)
	case fv.BingeTotal > BingeWarningTotal:
		in.Severity = models.SeverityWarning
		in.Message = fmt.Sprintf("Frequent binge usage: %d long sessions", fv.BingeTotal)
	default:
		return models.Insight{}, false
	}
	return in, true
}

// DetectSocial fires when social apps take more than 40% of screen time.
func DetectSocial(fv models.FeatureVector) (models.Insight, bool) {
	if fv.SocialRatio <= SocialWarningRatio {
		return models.Insight{}, false
	}
	return models.Insight{
		Category:         models.CategorySocial,
		Message:          fmt.Sprintf("Social media accounts for %.0f%% of screen time", fv.SocialRatio*100),
		Severity:         models.SeverityWarning,
		SupportingMetric: fv.SocialRatio,
	}, true
}
