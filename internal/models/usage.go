// Package models defines data structures and domain types.
package models

import "time"

// DailyUsageRecord is one calendar day of a single user's device usage.
// All durations are minutes. The time-of-day buckets are expected to add up to
// roughly TotalDuration, but a mismatch is tolerated.
type DailyUsageRecord struct {
	TotalDuration      int `json:"total_duration"`
	SessionCount       int `json:"session_count"`
	NightUsage         int `json:"night_usage"`    // 22:00-06:00
	BingeSessions      int `json:"binge_sessions"` // Sessions longer than the binge threshold
	SocialMediaTime    int `json:"social_media_time"`
	EntertainmentTime  int `json:"entertainment_time"`
	ProductivityTime   int `json:"productivity_time"`
	OtherTime          int `json:"other_time"`
	MorningUsage       int `json:"morning_usage"`   // 06:00-12:00
	AfternoonUsage     int `json:"afternoon_usage"` // 12:00-18:00
	EveningUsage       int `json:"evening_usage"`   // 18:00-22:00
	MaxContinuousUsage int `json:"max_continuous_usage"`
}

// TimeOfDay returns the morning, afternoon, evening and night buckets in order.
func (r DailyUsageRecord) TimeOfDay() [4]int {
	return [4]int{r.MorningUsage, r.AfternoonUsage, r.EveningUsage, r.NightUsage}
}

// UsageSession is a single raw app session as reported by a device.
type UsageSession struct {
	ID              int64
	UserID          string
	App             string
	StartedAt       time.Time
	DurationMinutes int
}

// End returns the time the session finished.
func (s UsageSession) End() time.Time {
	return s.StartedAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// FeatureVector is the numeric summary of a usage window consumed by scoring.
type FeatureVector struct {
	Days               int     // Number of days in the window
	DailyTotals        []int   // Total minutes per day, oldest first
	AverageDaily       float64 // Mean total minutes per day
	DeltaPerDay        float64 // (last - first) / max(1, days-1)
	LatestTotal        int     // Total minutes of the newest day
	LatestNight        int     // Night minutes of the newest day
	BingeTotal         int     // Sum of binge sessions
	NightTotal         int     // Sum of night minutes
	SocialRatio        float64 // Share of total minutes spent in social apps
	EntertainmentRatio float64
	ProductivityRatio  float64
}

// NightAverage returns the mean night minutes per day.
func (f FeatureVector) NightAverage() float64 {
	if f.Days == 0 {
		return 0
	}
	return float64(f.NightTotal) / float64(f.Days)
}

// Numeric projects the vector onto the fixed column order used by trained models.
func (f FeatureVector) Numeric() []float64 {
	return []float64{
		float64(f.LatestTotal),
		float64(f.LatestNight),
		float64(f.BingeTotal),
		float64(f.NightTotal),
		f.AverageDaily,
		f.DeltaPerDay,
		f.SocialRatio,
		f.EntertainmentRatio,
		f.ProductivityRatio,
	}
}

// FeatureNames lists the columns of FeatureVector.Numeric.
var FeatureNames = []string{
	"latest_total",
	"latest_night",
	"binge_total",
	"night_total",
	"average_daily",
	"delta_per_day",
	"social_ratio",
	"entertainment_ratio",
	"productivity_ratio",
}
