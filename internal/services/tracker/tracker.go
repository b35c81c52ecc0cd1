// Package tracker rolls raw app sessions up into daily usage records.
package tracker

import (
	"sort"
	"strings"
	"time"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// ContinuousGap is the largest pause that still counts as continuous usage.
const ContinuousGap = 5 * time.Minute

// App category names.
const (
	CategorySocial        = "social"
	CategoryEntertainment = "entertainment"
	CategoryProductivity  = "productivity"
	CategoryOther         = "other"
)

var appCategories = map[string]string{
	"instagram": CategorySocial,
	"tiktok":    CategorySocial,
	"whatsapp":  CategorySocial,
	"facebook":  CategorySocial,
	"twitter":   CategorySocial,
	"x":         CategorySocial,
	"snapchat":  CategorySocial,
	"reddit":    CategorySocial,

	"youtube": CategoryEntertainment,
	"netflix": CategoryEntertainment,
	"spotify": CategoryEntertainment,
	"games":   CategoryEntertainment,
	"twitch":  CategoryEntertainment,

	"chrome":   CategoryProductivity,
	"email":    CategoryProductivity,
	"gmail":    CategoryProductivity,
	"calendar": CategoryProductivity,
	"notes":    CategoryProductivity,
	"office":   CategoryProductivity,
	"slack":    CategoryProductivity,
}

// Categorize returns the category for an app name.
func Categorize(app string) string {
	if c, ok := appCategories[strings.ToLower(strings.TrimSpace(app))]; ok {
		return c
	}
	return CategoryOther
}

// Tracker builds daily records using a binge session threshold.
type Tracker struct {
	bingeThreshold int
	loc            *time.Location
}

// New creates a Tracker. Sessions longer than bingeMinutes count as binges.
// Day boundaries and time-of-day buckets use loc.
func New(bingeMinutes int, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{bingeThreshold: bingeMinutes, loc: loc}
}

// DayStart truncates t to midnight in the tracker's location.
func (t *Tracker) DayStart(ts time.Time) time.Time {
	ts = ts.In(t.loc)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, t.loc)
}

// BuildDailyRecord summarizes sessions that all belong to one day.
func (t *Tracker) BuildDailyRecord(sessions []models.UsageSession) models.DailyUsageRecord {
	var rec models.DailyUsageRecord
	rec.SessionCount = len(sessions)

	for _, s := range sessions {
		d := max(0, s.DurationMinutes)
		rec.TotalDuration += d

		switch hour := s.StartedAt.In(t.loc).Hour(); {
		case hour >= 6 && hour < 12:
			rec.MorningUsage += d
		case hour >= 12 && hour < 18:
			rec.AfternoonUsage += d
		case hour >= 18 && hour < 22:
			rec.EveningUsage += d
		default:
			rec.NightUsage += d
		}

		if d > t.bingeThreshold {
			rec.BingeSessions++
		}

		switch Categorize(s.App) {
		case CategorySocial:
			rec.SocialMediaTime += d
		case CategoryEntertainment:
			rec.EntertainmentTime += d
		case CategoryProductivity:
			rec.ProductivityTime += d
		default:
			rec.OtherTime += d
		}
	}

	rec.MaxContinuousUsage = maxContinuous(sessions)
	return rec
}

// maxContinuous returns the longest stretch of back-to-back sessions in minutes.
func maxContinuous(sessions []models.UsageSession) int {
	if len(sessions) == 0 {
		return 0
	}

	sorted := make([]models.UsageSession, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartedAt.Before(sorted[j].StartedAt) })

	best, current := 0, 0
	var lastEnd time.Time
	for i, s := range sorted {
		d := max(0, s.DurationMinutes)
		if i > 0 && s.StartedAt.Sub(lastEnd) < ContinuousGap {
			current += d
		} else {
			current = d
		}
		if end := s.End(); end.After(lastEnd) {
			lastEnd = end
		}
		best = max(best, current)
	}
	return best
}

// BuildWindow returns one record per calendar day for the days ending on the
// day of end, oldest first. Days without sessions are zero records.
func (t *Tracker) BuildWindow(sessions []models.UsageSession, end time.Time, days int) []models.DailyUsageRecord {
	if days < 1 {
		return nil
	}

	last := t.DayStart(end)
	first := last.AddDate(0, 0, -(days - 1))

	byDay := make([][]models.UsageSession, days)
	for _, s := range sessions {
		start := t.DayStart(s.StartedAt)
		if start.Before(first) || start.After(last) {
			continue
		}
		idx := dayIndex(first, start)
		if idx >= 0 && idx < days {
			byDay[idx] = append(byDay[idx], s)
		}
	}

	window := make([]models.DailyUsageRecord, days)
	for i, ds := range byDay {
		window[i] = t.BuildDailyRecord(ds)
	}
	return window
}

// dayIndex counts calendar days between two midnights, robust to DST shifts.
func dayIndex(first, day time.Time) int {
	y1, m1, d1 := first.Date()
	y2, m2, d2 := day.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
