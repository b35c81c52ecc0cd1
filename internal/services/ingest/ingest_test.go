package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "usage.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"User ID", "App Name", "Start Time", "Duration (minutes)"},
		{"alice", "Instagram", "2024-03-01 22:30:00", "50"},
		{"", "YouTube", "2024-03-01 13:00", "12.6"},
		{"bob", "TikTok", "not a time", "10"},
		{"bob", "", "2024-03-01 10:00", "10"},
		{"bob", "Email", "2024-03-02T08:15:00", "-3"},
	})

	res, err := LoadXLSX(path, "default")
	if err != nil {
		t.Fatalf("LoadXLSX failed: %v", err)
	}

	if len(res.Sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(res.Sessions))
	}
	if res.Skipped != 3 {
		t.Errorf("Expected 3 skipped rows, got %d", res.Skipped)
	}

	first := res.Sessions[0]
	want := time.Date(2024, 3, 1, 22, 30, 0, 0, time.Local)
	if first.UserID != "alice" || first.App != "Instagram" || first.DurationMinutes != 50 || !first.StartedAt.Equal(want) {
		t.Errorf("Unexpected first session %+v", first)
	}
	if res.Sessions[1].UserID != "default" || res.Sessions[1].DurationMinutes != 13 {
		t.Errorf("Unexpected second session %+v", res.Sessions[1])
	}
	if !reflect.DeepEqual(res.Users(), []string{"alice", "default"}) {
		t.Errorf("Unexpected users %v", res.Users())
	}
}

func TestLoadXLSX_MissingColumns(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"User", "Color"},
		{"alice", "blue"},
	})

	_, err := LoadXLSX(path, "")
	if err == nil || !strings.Contains(err.Error(), "missing required columns") {
		t.Errorf("Expected missing columns error, got %v", err)
	}
}

func TestLoadXLSX_NoRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{{"App", "Start", "Duration"}})
	if _, err := LoadXLSX(path, ""); err == nil {
		t.Error("Expected error for header-only sheet")
	}
}

func TestDecodeJSON(t *testing.T) {
	input := `[
		{"user_id": "alice", "app": "Netflix", "started_at": "2024-03-01T20:00:00Z", "duration_minutes": 95},
		{"app": "Chrome", "started_at": "2024-03-01 09:00", "duration_minutes": 5},
		{"user_id": "alice", "app": "Chrome", "started_at": "yesterday", "duration_minutes": 5}
	]`

	res, err := DecodeJSON(strings.NewReader(input), "me")
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if len(res.Sessions) != 2 || res.Skipped != 1 {
		t.Fatalf("Expected 2 sessions and 1 skipped, got %d/%d", len(res.Sessions), res.Skipped)
	}
	if !res.Sessions[0].StartedAt.Equal(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start %v", res.Sessions[0].StartedAt)
	}
	if res.Sessions[1].UserID != "me" {
		t.Errorf("Expected default user, got %q", res.Sessions[1].UserID)
	}

	if _, err := DecodeJSON(strings.NewReader("{"), ""); err == nil {
		t.Error("Expected decode error")
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "sessions.json")
	content := `[{"user_id":"u","app":"Spotify","started_at":"2024-03-01 07:00","duration_minutes":30}]`
	if err := os.WriteFile(jsonPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	res, err := ImportFile(jsonPath, "")
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if len(res.Sessions) != 1 {
		t.Errorf("Expected 1 session, got %d", len(res.Sessions))
	}

	if _, err := ImportFile(filepath.Join(dir, "sessions.csv"), ""); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local), true},
		{"45352", time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), true},
		{"", time.Time{}, false},
		{"soon", time.Time{}, false},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseTime(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
