// Package ingest imports raw usage sessions from spreadsheet and JSON exports.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// Result is the outcome of an import.
type Result struct {
	Sessions []models.UsageSession
	Skipped  int // Rows that could not be parsed
}

// Users returns the distinct user IDs in the result, in first-seen order.
func (r *Result) Users() []string {
	seen := make(map[string]bool)
	var users []string
	for _, s := range r.Sessions {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			users = append(users, s.UserID)
		}
	}
	return users
}

// ImportFile loads sessions from an .xlsx or .json file. Rows without a user
// column are attributed to defaultUser.
func ImportFile(path, defaultUser string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, defaultUser)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return DecodeJSON(f, defaultUser)
	default:
		return nil, fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}
}

// columns holds detected header positions, -1 when absent.
type columns struct {
	user, app, start, duration int
}

func detectColumns(header []string) columns {
	c := columns{-1, -1, -1, -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "user") || strings.Contains(l, "device"):
			if c.user == -1 {
				c.user = i
			}
		case strings.Contains(l, "app") || strings.Contains(l, "package"):
			if c.app == -1 {
				c.app = i
			}
		case strings.Contains(l, "start") || strings.Contains(l, "time") || strings.Contains(l, "date"):
			if c.start == -1 {
				c.start = i
			}
		case strings.Contains(l, "duration") || strings.Contains(l, "minutes"):
			if c.duration == -1 {
				c.duration = i
			}
		}
	}
	return c
}

// LoadXLSX reads sessions from the first sheet of a workbook, locating columns
// by header names.
func LoadXLSX(path, defaultUser string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := detectColumns(rows[0])
	if cols.app == -1 || cols.start == -1 || cols.duration == -1 {
		return nil, fmt.Errorf("missing required columns (app, start, duration) in header %v", rows[0])
	}

	res := &Result{}
	for i, r := range rows[1:] {
		s, err := parseRow(r, cols, defaultUser)
		if err != nil {
			logger.Debug("skipping spreadsheet row", "row", i+2, "error", err)
			res.Skipped++
			continue
		}
		res.Sessions = append(res.Sessions, s)
	}
	return res, nil
}

func cell(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}

func parseRow(r []string, cols columns, defaultUser string) (models.UsageSession, error) {
	s := models.UsageSession{
		UserID: cell(r, cols.user),
		App:    cell(r, cols.app),
	}
	if s.UserID == "" {
		s.UserID = defaultUser
	}
	if s.UserID == "" || s.App == "" {
		return s, fmt.Errorf("missing user or app")
	}

	start, err := ParseTime(cell(r, cols.start))
	if err != nil {
		return s, err
	}
	s.StartedAt = start

	minutes, err := strconv.ParseFloat(cell(r, cols.duration), 64)
	if err != nil || math.IsNaN(minutes) || minutes < 0 {
		return s, fmt.Errorf("invalid duration %q", cell(r, cols.duration))
	}
	s.DurationMinutes = int(math.Round(minutes))
	return s, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime accepts common timestamp layouts and Excel serial dates. Values
// without a zone are read as local time.
func ParseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid serial date %q: %w", v, err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

type jsonSession struct {
	UserID          string  `json:"user_id"`
	App             string  `json:"app"`
	StartedAt       string  `json:"started_at"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// DecodeJSON reads a JSON array of session objects.
func DecodeJSON(r io.Reader, defaultUser string) (*Result, error) {
	var raw []jsonSession
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	res := &Result{}
	for i, js := range raw {
		row := []string{js.UserID, js.App, js.StartedAt, strconv.FormatFloat(js.DurationMinutes, 'f', -1, 64)}
		s, err := parseRow(row, columns{0, 1, 2, 3}, defaultUser)
		if err != nil {
			logger.Debug("skipping json session", "index", i, "error", err)
			res.Skipped++
			continue
		}
		res.Sessions = append(res.Sessions, s)
	}
	return res, nil
}
