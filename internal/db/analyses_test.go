package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

func sampleResult(level models.RiskLevel) *models.AnalysisResult {
	return &models.AnalysisResult{
		CurrentRisk: models.RiskAssessment{
			RiskLevel:   level,
			RiskLabel:   level.String(),
			Score:       int(level) * 2,
			Probability: 0.5,
			Method:      models.MethodRuleBased,
		},
		Insights:        []models.Insight{{Category: models.CategoryNight, Severity: models.SeverityWarning}},
		Recommendations: []string{"Schedule device-free hours"},
		Visualization:   models.Visualization{DailyTotals: []int{100, 200, 300}},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := db.SaveAnalysis(ctx, "alice", sampleResult(models.RiskLow), now)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("Expected uuid id, got %q", first)
	}

	second, err := db.SaveAnalysis(ctx, "alice", sampleResult(models.RiskHigh), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	latest, err := db.GetLatestAnalysis(ctx, "alice")
	if err != nil {
		t.Fatalf("GetLatestAnalysis failed: %v", err)
	}
	if latest == nil || latest.ID != second {
		t.Fatalf("Expected latest %s, got %+v", second, latest)
	}
	if latest.Result.CurrentRisk.RiskLabel != "High" {
		t.Errorf("Expected High, got %s", latest.Result.CurrentRisk.RiskLabel)
	}
	if len(latest.Result.Visualization.DailyTotals) != 3 {
		t.Errorf("Expected visualization to round-trip, got %+v", latest.Result.Visualization)
	}
	if !latest.CreatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected created at %v, got %v", now.Add(time.Hour), latest.CreatedAt)
	}

	history, err := db.GetAnalysisHistory(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(history) != 2 || history[1].ID != first {
		t.Errorf("Expected newest-first history of 2, got %d", len(history))
	}
}

func TestGetLatestAnalysis_None(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	latest, err := db.GetLatestAnalysis(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetLatestAnalysis failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil, got %+v", latest)
	}
}

func TestGetAnalysisHistory_Limit(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := db.SaveAnalysis(ctx, "bob", sampleResult(models.RiskModerate), now); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}
	}

	history, err := db.GetAnalysisHistory(ctx, "bob", 3)
	if err != nil {
		t.Fatalf("GetAnalysisHistory failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("Expected 3, got %d", len(history))
	}
}
