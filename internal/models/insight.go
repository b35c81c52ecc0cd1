package models

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities, higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Insight categories, one per detector.
const (
	CategoryBinge  = "binge"
	CategoryNight  = "night"
	CategorySocial = "social"
	CategoryTrend  = "trend"
)

// Insight is a detected behavioral pattern.
type Insight struct {
	Category         string   `json:"category"`
	Message          string   `json:"message"`
	Severity         Severity `json:"severity"`
	SupportingMetric float64  `json:"supporting_metric"`
}
