package models

// RiskLevel is the ordinal addiction-risk classification.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskCritical
)

// RiskLevelCount is the number of defined risk levels.
const RiskLevelCount = 4

var riskLabels = [RiskLevelCount]string{"Low", "Moderate", "High", "Critical"}

// Risk palette colors, one per level.
var riskColors = [RiskLevelCount]string{"#4CAF50", "#FF9800", "#FF5722", "#D32F2F"}

// String returns the human label of the level.
func (l RiskLevel) String() string {
	if !l.Valid() {
		return "Unknown"
	}
	return riskLabels[l]
}

// Color returns the hex color used to display the level.
func (l RiskLevel) Color() string {
	if !l.Valid() {
		return "#9E9E9E"
	}
	return riskColors[l]
}

// Valid reports whether l is one of the defined levels.
func (l RiskLevel) Valid() bool {
	return l >= RiskLow && l <= RiskCritical
}

// Scoring methods.
const (
	MethodML        = "ml"
	MethodRuleBased = "rule-based"
)

// RiskAssessment is the outcome of scoring a feature vector.
type RiskAssessment struct {
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskLabel   string    `json:"risk_label"`
	Score       int       `json:"score"`
	Probability float64   `json:"probability"`
	Method      string    `json:"method"`
}
