// Package usage turns raw per-day usage telemetry into typed records and
// reduces windows of records into feature vectors.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// ValidationError reports raw input whose shape is not usable at all.
// Bad individual values never produce one; they degrade to zero.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid usage input: " + e.Reason
	}
	return fmt.Sprintf("invalid usage input at %s: %s", e.Field, e.Reason)
}

// fieldSetters maps recognized raw keys onto record fields.
var fieldSetters = map[string]func(*models.DailyUsageRecord, int){
	"total_duration":       func(r *models.DailyUsageRecord, v int) { r.TotalDuration = v },
	"session_count":        func(r *models.DailyUsageRecord, v int) { r.SessionCount = v },
	"night_usage":          func(r *models.DailyUsageRecord, v int) { r.NightUsage = v },
	"binge_sessions":       func(r *models.DailyUsageRecord, v int) { r.BingeSessions = v },
	"social_media_time":    func(r *models.DailyUsageRecord, v int) { r.SocialMediaTime = v },
	"entertainment_time":   func(r *models.DailyUsageRecord, v int) { r.EntertainmentTime = v },
	"productivity_time":    func(r *models.DailyUsageRecord, v int) { r.ProductivityTime = v },
	"other_time":           func(r *models.DailyUsageRecord, v int) { r.OtherTime = v },
	"morning_usage":        func(r *models.DailyUsageRecord, v int) { r.MorningUsage = v },
	"afternoon_usage":      func(r *models.DailyUsageRecord, v int) { r.AfternoonUsage = v },
	"evening_usage":        func(r *models.DailyUsageRecord, v int) { r.EveningUsage = v },
	"max_continuous_usage": func(r *models.DailyUsageRecord, v int) { r.MaxContinuousUsage = v },
}

// Normalize builds a complete DailyUsageRecord from a raw field mapping.
// Unknown keys are ignored, missing or malformed values become 0 and
// negative values are clamped to 0.
func Normalize(raw any) (models.DailyUsageRecord, error) {
	fields, ok := asMapping(raw)
	if !ok {
		return models.DailyUsageRecord{}, &ValidationError{
			Reason: fmt.Sprintf("expected a field mapping, got %T", raw),
		}
	}

	var rec models.DailyUsageRecord
	for key, value := range fields {
		set, known := fieldSetters[key]
		if !known {
			continue
		}
		set(&rec, toMinutes(value))
	}
	return rec, nil
}

// NormalizeWindow normalizes a day-indexed set of raw records. The input may be
// a map keyed by day index (ints or integer strings) or an ordered slice.
// Records are returned oldest first, by ascending day index. String keys that
// parse to the same index, such as "0" and "00", are rejected.
func NormalizeWindow(raw any) ([]models.DailyUsageRecord, error) {
	type indexed struct {
		day int
		raw any
	}
	var days []indexed

	switch v := raw.(type) {
	case []any:
		for i, r := range v {
			days = append(days, indexed{i, r})
		}
	case []map[string]any:
		for i, r := range v {
			days = append(days, indexed{i, r})
		}
	case map[int]any:
		for k, r := range v {
			days = append(days, indexed{k, r})
		}
	case map[int]map[string]any:
		for k, r := range v {
			days = append(days, indexed{k, r})
		}
	case map[string]any:
		seen := make(map[int]bool, len(v))
		for k, r := range v {
			day, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return nil, &ValidationError{Field: k, Reason: "day index is not an integer"}
			}
			if seen[day] {
				return nil, &ValidationError{Field: k, Reason: "duplicate day index"}
			}
			seen[day] = true
			days = append(days, indexed{day, r})
		}
	default:
		return nil, &ValidationError{
			Reason: fmt.Sprintf("expected a day-indexed mapping or list, got %T", raw),
		}
	}

	if len(days) == 0 {
		return nil, &ValidationError{Reason: "usage window is empty"}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].day < days[j].day })

	window := make([]models.DailyUsageRecord, 0, len(days))
	for _, d := range days {
		rec, err := Normalize(d.raw)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("day %d", d.day)
			}
			return nil, err
		}
		window = append(window, rec)
	}
	return window, nil
}

func asMapping(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[string]int:
		out := make(map[string]any, len(v))
		for k, n := range v {
			out[k] = n
		}
		return out, true
	case map[string]float64:
		out := make(map[string]any, len(v))
		for k, n := range v {
			out[k] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// toMinutes coerces a raw value into a non-negative int.
func toMinutes(value any) int {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}
