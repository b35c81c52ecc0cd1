package styles

import (
	"strings"
	"testing"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

func TestRiskColor(t *testing.T) {
	tests := []struct {
		level models.RiskLevel
		want  string
	}{
		{models.RiskLow, "#4CAF50"},
		{models.RiskModerate, "#FF9800"},
		{models.RiskHigh, "#FF5722"},
		{models.RiskCritical, "#D32F2F"},
	}

	for _, tt := range tests {
		if got := string(RiskColor(tt.level)); got != tt.want {
			t.Errorf("RiskColor(%v) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestRiskBadge(t *testing.T) {
	badge := RiskBadge(models.RiskCritical)
	if !strings.Contains(badge, "CRITICAL") {
		t.Errorf("Expected badge to contain CRITICAL, got %q", badge)
	}
}

func TestGetSeverityStyle(t *testing.T) {
	if GetSeverityStyle(models.SeverityCritical).GetBold() != true {
		t.Error("Expected critical severity to be bold")
	}
	if GetSeverityStyle(models.SeverityWarning).GetForeground() != Warning {
		t.Error("Expected warning severity to use the warning color")
	}
	if GetSeverityStyle("unknown").GetForeground() != Info {
		t.Error("Expected unknown severity to fall back to info")
	}
}

func TestCategoryColor(t *testing.T) {
	if CategoryColor("social") != Social {
		t.Error("Expected social color")
	}
	if CategoryColor("gaming") != Other {
		t.Error("Expected unknown category to use the other color")
	}
}
