package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points cwd and HOME at an empty temp dir so no real .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Setenv("HOME", tmpDir)
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "data", "db.sqlite"))
	return tmpDir
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want %+v", cfg.Thresholds, DefaultThresholds())
	}
	if cfg.WindowDays != 3 {
		t.Errorf("WindowDays = %d, want 3", cfg.WindowDays)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.ModelMinConfidence != 0.6 {
		t.Errorf("ModelMinConfidence = %v, want 0.6", cfg.ModelMinConfidence)
	}
	if cfg.UserID != "default" {
		t.Errorf("UserID = %q, want default", cfg.UserID)
	}
	if !cfg.Notify {
		t.Error("Notify should default to true")
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "data")); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("DAILY_LIMIT_MINUTES", "180")
	t.Setenv("DAILY_HEAVY_LIMIT_MINUTES", "300")
	t.Setenv("NIGHT_USAGE_POINTS", "4")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("MODEL_PATH", "/tmp/model.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Thresholds.DailyLimitMinutes != 180 {
		t.Errorf("DailyLimitMinutes = %d, want 180", cfg.Thresholds.DailyLimitMinutes)
	}
	if cfg.Thresholds.HeavyLimitMinutes != 300 {
		t.Errorf("HeavyLimitMinutes = %d, want 300", cfg.Thresholds.HeavyLimitMinutes)
	}
	if cfg.Thresholds.NightUsagePoints != 4 {
		t.Errorf("NightUsagePoints = %d, want 4", cfg.Thresholds.NightUsagePoints)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %v, want 1m", cfg.RefreshInterval)
	}
	if cfg.ModelPath != "/tmp/model.json" {
		t.Errorf("ModelPath = %q, want /tmp/model.json", cfg.ModelPath)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"NotAnInt", "NIGHT_LIMIT_MINUTES", "lots", "parse env:"},
		{"InvertedLimits", "DAILY_HEAVY_LIMIT_MINUTES", "100", "invalid thresholds"},
		{"NegativeWeight", "BINGE_POINTS", "-1", "invalid thresholds"},
		{"ZeroWindow", "WINDOW_DAYS", "0", "WINDOW_DAYS"},
		{"Confidence", "MODEL_MIN_CONFIDENCE", "1.5", "MODEL_MIN_CONFIDENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := isolate(t)
	content := "NIGHT_LIMIT_MINUTES=90\nUSER_ID=alice"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("NIGHT_LIMIT_MINUTES")
		os.Unsetenv("USER_ID")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Thresholds.NightLimitMinutes != 90 {
		t.Errorf("NightLimitMinutes = %d, want 90", cfg.Thresholds.NightLimitMinutes)
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", cfg.UserID)
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("default thresholds should be valid: %v", err)
	}

	bad := DefaultThresholds()
	bad.BingeSessionMinutes = 0
	bad.HeavyLimitMinutes = bad.DailyLimitMinutes
	err := bad.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	if !strings.Contains(err.Error(), "BINGE_SESSION_THRESHOLD_MINUTES") ||
		!strings.Contains(err.Error(), "DAILY_HEAVY_LIMIT_MINUTES") {
		t.Errorf("Expected both problems reported, got %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	if got, want := getDefaultDatabasePath(), filepath.Join(home, ".config", "screentime-tui", "screentime.db"); got != want {
		t.Errorf("getDefaultDatabasePath() = %q, want %q", got, want)
	}
	if got, want := getDefaultModelPath(), filepath.Join(home, ".config", "screentime-tui", "risk_model.json"); got != want {
		t.Errorf("getDefaultModelPath() = %q, want %q", got, want)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Fatal("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("getEnvPaths()[0] = %q, want cwd .env", paths[0])
	}
}
