package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

var fixedNow = time.Date(2024, 3, 5, 20, 0, 0, 0, time.Local)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:       filepath.Join(tmpDir, "test.db"),
		ModelPath:          filepath.Join(tmpDir, "model.json"),
		ModelMinConfidence: 0.6,
		UserID:             "me",
		WindowDays:         3,
		Notify:             true,
		Thresholds:         config.DefaultThresholds(),
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func logHeavyDays(t *testing.T, mgr *Manager, user string) {
	t.Helper()
	ctx := context.Background()
	for day := 3; day <= 5; day++ {
		for _, s := range []models.UsageSession{
			{UserID: user, App: "YouTube", StartedAt: time.Date(2024, 3, day, 1, 0, 0, 0, time.Local), DurationMinutes: 90},
			{UserID: user, App: "TikTok", StartedAt: time.Date(2024, 3, day, 13, 0, 0, 0, time.Local), DurationMinutes: 200},
			{UserID: user, App: "Instagram", StartedAt: time.Date(2024, 3, day, 18, 30, 0, 0, time.Local), DurationMinutes: 120},
		} {
			s := s
			if err := mgr.LogUsage(ctx, &s); err != nil {
				t.Fatalf("LogUsage failed: %v", err)
			}
		}
	}
}

func captureNotifications(t *testing.T) *[]string {
	t.Helper()
	var mu sync.Mutex
	var titles []string
	orig := notify
	notify = func(title, body string) error {
		mu.Lock()
		defer mu.Unlock()
		titles = append(titles, title)
		return nil
	}
	t.Cleanup(func() { notify = orig })
	return &titles
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t)

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.ModelStatus().Loaded {
		t.Error("No model should be loaded")
	}
	if mgr.watcher == nil {
		t.Error("Model watcher should be started")
	}
	if mgr.Config().UserID != "me" {
		t.Errorf("Expected config user me, got %q", mgr.Config().UserID)
	}
}

func TestManager_AnalyzeHeavyUser(t *testing.T) {
	captureNotifications(t)
	mgr := newTestManager(t)
	ch, _ := mgr.Subscribe()

	logHeavyDays(t, mgr, "alice")

	report, err := mgr.Analyze(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(report.Window) != 3 {
		t.Fatalf("Expected 3-day window, got %d", len(report.Window))
	}
	if report.Window[2].TotalDuration != 410 || report.Window[2].NightUsage != 90 {
		t.Errorf("Unexpected latest day %+v", report.Window[2])
	}
	if report.Result.CurrentRisk.RiskLabel != "Critical" {
		t.Errorf("Expected Critical, got %s", report.Result.CurrentRisk.RiskLabel)
	}
	if report.ID == "" {
		t.Error("Expected stored analysis ID")
	}
	if report.Summary.TotalMinutes != 1230 {
		t.Errorf("Expected 1230 total minutes, got %d", report.Summary.TotalMinutes)
	}

	history, err := mgr.History(context.Background(), "alice", 5)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != report.ID {
		t.Errorf("Expected stored report in history, got %+v", history)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-ch:
			if upd, ok := ev.(AnalysisUpdatedEvent); ok {
				if upd.Report.UserID != "alice" {
					t.Errorf("Unexpected report user %q", upd.Report.UserID)
				}
				return
			}
		case <-deadline:
			t.Fatal("Timeout waiting for AnalysisUpdatedEvent")
		}
	}
}

func TestManager_AnalyzeEmptyUser(t *testing.T) {
	mgr := newTestManager(t)

	report, err := mgr.Analyze(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.Result.CurrentRisk.RiskLevel != models.RiskLow {
		t.Errorf("Expected Low for no usage, got %v", report.Result.CurrentRisk.RiskLevel)
	}
}

func TestManager_CheckNotifications(t *testing.T) {
	titles := captureNotifications(t)
	mgr := newTestManager(t)

	steps := []models.RiskLevel{models.RiskLow, models.RiskHigh, models.RiskCritical, models.RiskCritical, models.RiskModerate}
	for _, level := range steps {
		mgr.checkNotifications("alice", models.RiskAssessment{RiskLevel: level, RiskLabel: level.String()})
	}

	want := []string{"Screen time risk: High", "Screen time risk: Critical"}
	if len(*titles) != len(want) {
		t.Fatalf("Expected %d notifications, got %v", len(want), *titles)
	}
	for i := range want {
		if (*titles)[i] != want[i] {
			t.Errorf("Notification %d = %q, want %q", i, (*titles)[i], want[i])
		}
	}
}

func TestManager_NotificationsDisabled(t *testing.T) {
	titles := captureNotifications(t)
	mgr := newTestManager(t)
	mgr.cfg.Notify = false

	mgr.checkNotifications("bob", models.RiskAssessment{RiskLevel: models.RiskLow})
	mgr.checkNotifications("bob", models.RiskAssessment{RiskLevel: models.RiskCritical})

	if len(*titles) != 0 {
		t.Errorf("Expected no notifications, got %v", *titles)
	}
}

func TestManager_Import(t *testing.T) {
	mgr := newTestManager(t)
	path := filepath.Join(t.TempDir(), "sessions.json")
	content := `[
		{"user_id": "carol", "app": "Netflix", "started_at": "2024-03-05 21:00", "duration_minutes": 50},
		{"app": "Chrome", "started_at": "2024-03-05 09:00", "duration_minutes": 10}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	res, err := mgr.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(res.Sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(res.Sessions))
	}

	users, err := mgr.Users(context.Background())
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 2 || users[0] != "carol" || users[1] != "me" {
		t.Errorf("Unexpected users %v", users)
	}

	if stats := mgr.GetStats(context.Background()); stats.UserCount != 2 {
		t.Errorf("Expected 2 users in stats, got %d", stats.UserCount)
	}
}

func TestManager_AnalyzeRaw(t *testing.T) {
	mgr := newTestManager(t)

	res, err := mgr.AnalyzeRaw(map[string]any{"0": map[string]any{"total_duration": 400}})
	if err != nil {
		t.Fatalf("AnalyzeRaw failed: %v", err)
	}
	if res.CurrentRisk.Score != 3 {
		t.Errorf("Expected score 3, got %d", res.CurrentRisk.Score)
	}

	if _, err := mgr.AnalyzeRaw(42); err == nil {
		t.Error("Expected validation error")
	}
}

func TestManager_ModelReload(t *testing.T) {
	mgr := newTestManager(t)
	ch, _ := mgr.Subscribe()

	model := `{"learning_rate":1,"base_scores":[0,0,0,5],"stages":[[
		{"nodes":[{"left":-1}]},{"nodes":[{"left":-1}]},{"nodes":[{"left":-1}]},{"nodes":[{"left":-1}]}]]}`
	if err := os.WriteFile(mgr.Config().ModelPath, []byte(model), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if e, ok := ev.(ModelReloadedEvent); ok && e.Error == nil {
				if !e.Status.Loaded {
					t.Error("Expected model to be loaded")
				}
				res, _ := mgr.AnalyzeRaw([]any{map[string]any{"total_duration": 10}})
				if res.CurrentRisk.Method != models.MethodML {
					t.Errorf("Expected ml scoring after reload, got %s", res.CurrentRisk.Method)
				}
				return
			}
		case <-deadline:
			t.Fatal("Timeout waiting for ModelReloadedEvent")
		}
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t)

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
	}
}

func TestManager_Broadcast(t *testing.T) {
	mgr := newTestManager(t)

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	event := StatsEvent{UserCount: 1}
	mgr.broadcast(event)

	select {
	case e := <-ch:
		if e != event {
			t.Errorf("Got event %v, want %v", e, event)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- StatsEvent{}

	cmd := WaitForEvent(ch)
	if msg := cmd(); msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = AnalysisUpdatedEvent{}
	var _ ServiceEvent = UsageLoggedEvent{}
	var _ ServiceEvent = ModelReloadedEvent{}
	var _ ServiceEvent = ErrorEvent{}
	var _ ServiceEvent = StatsEvent{}

	AnalysisUpdatedEvent{}.isServiceEvent()
	UsageLoggedEvent{}.isServiceEvent()
	ModelReloadedEvent{}.isServiceEvent()
	ErrorEvent{}.isServiceEvent()
	StatsEvent{}.isServiceEvent()
}
