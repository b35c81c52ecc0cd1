// Package services provides service orchestration for the TUI and the API.
package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/db"
	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/analysis"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/ingest"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/risk"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/tracker"
	"github.com/j-veylop/screentime-dashboard-tui/internal/usage"
)

type (
	// AnalysisUpdatedEvent is emitted after a user's window has been analyzed.
	AnalysisUpdatedEvent struct {
		Report *models.UserReport
	}

	// UsageLoggedEvent is emitted when new sessions are stored.
	UsageLoggedEvent struct {
		UserID   string
		Sessions int
	}

	// ModelReloadedEvent is emitted when the risk model file changes.
	ModelReloadedEvent struct {
		Status risk.ModelStatus
		Error  error
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent carries global statistics.
	StatsEvent struct {
		UserCount   int
		ModelLoaded bool
		ModelSource string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AnalysisUpdatedEvent) isServiceEvent() {}
func (UsageLoggedEvent) isServiceEvent()     {}
func (ModelReloadedEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// notify sends a desktop notification. Replaced in tests.
var notify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu             sync.RWMutex
	cfg            *config.Config
	database       *db.DB
	risk           *risk.Service
	watcher        *risk.ModelWatcher
	analyzer       *analysis.Analyzer
	tracker        *tracker.Tracker
	stopChan       chan struct{}
	subscribers    []chan<- ServiceEvent
	previousLevels map[string]models.RiskLevel
	now            func() time.Time
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:            cfg,
		stopChan:       make(chan struct{}),
		previousLevels: make(map[string]models.RiskLevel),
		now:            time.Now,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.risk = risk.New(cfg.Thresholds, nil, cfg.ModelMinConfidence)
	m.loadModel()

	m.tracker = tracker.New(cfg.Thresholds.BingeSessionMinutes, time.Local)
	m.analyzer = analysis.New(m.risk)

	if cfg.RefreshInterval > 0 {
		go m.refreshLoop(cfg.RefreshInterval)
	}

	return m, nil
}

// loadModel installs the trained model if present and starts watching it.
func (m *Manager) loadModel() {
	path := m.cfg.ModelPath
	if path == "" {
		return
	}

	err := m.risk.LoadModel(path)
	switch {
	case err == nil:
		logger.Info("loaded risk model", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no risk model found, using rule-based scoring", "path", path)
	default:
		logger.Warn("failed to load risk model, using rule-based scoring", "path", path, "error", err)
	}

	if _, statErr := os.Stat(filepath.Dir(path)); statErr != nil {
		return
	}
	w, err := risk.WatchModel(m.risk, path, func(st risk.ModelStatus, err error) {
		m.broadcast(ModelReloadedEvent{Status: st, Error: err})
	})
	if err != nil {
		logger.Warn("failed to watch risk model", "path", path, "error", err)
		return
	}
	m.watcher = w
}

// refreshLoop periodically re-analyzes the configured user and prunes old sessions.
func (m *Manager) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if _, err := m.Analyze(ctx, m.cfg.UserID); err != nil {
				logger.Error("failed to refresh analysis", "user", m.cfg.UserID, "error", err)
			}
			m.prune(ctx)
			cancel()

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) prune(ctx context.Context) {
	if m.cfg.SessionRetention <= 0 {
		return
	}
	n, err := m.database.PruneSessions(ctx, m.now().Add(-m.cfg.SessionRetention))
	if err != nil {
		logger.Error("failed to prune sessions", "error", err)
		return
	}
	if n > 0 {
		logger.Debug("pruned old sessions", "count", n)
	}
}

// LogUsage stores one session.
func (m *Manager) LogUsage(ctx context.Context, s *models.UsageSession) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = m.now()
	}
	if err := m.database.InsertSession(ctx, s); err != nil {
		return err
	}
	m.broadcast(UsageLoggedEvent{UserID: s.UserID, Sessions: 1})
	return nil
}

// Import loads sessions from a spreadsheet or JSON export and stores them.
func (m *Manager) Import(ctx context.Context, path string) (*ingest.Result, error) {
	res, err := ingest.ImportFile(path, m.cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	if len(res.Sessions) == 0 {
		return res, nil
	}

	if _, err := m.database.InsertSessions(ctx, res.Sessions); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, s := range res.Sessions {
		counts[s.UserID]++
	}
	for _, user := range res.Users() {
		m.broadcast(UsageLoggedEvent{UserID: user, Sessions: counts[user]})
	}
	return res, nil
}

// Window returns the user's zero-filled usage window ending today.
func (m *Manager) Window(ctx context.Context, userID string) ([]models.DailyUsageRecord, error) {
	now := m.now()
	days := max(1, m.cfg.WindowDays)
	since := m.tracker.DayStart(now).AddDate(0, 0, -(days - 1))

	sessions, err := m.database.GetSessions(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return m.tracker.BuildWindow(sessions, now, days), nil
}

// Analyze analyzes the user's current window, stores the result and notifies
// subscribers. A storage failure is reported but does not fail the analysis.
func (m *Manager) Analyze(ctx context.Context, userID string) (*models.UserReport, error) {
	window, err := m.Window(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := m.analyzer.Analyze(window)
	if err != nil {
		return nil, err
	}

	report := &models.UserReport{
		UserID:     userID,
		Result:     result,
		Window:     window,
		Summary:    usage.Summarize(window),
		AnalyzedAt: m.now(),
	}

	id, err := m.persist(ctx, report)
	if err != nil {
		logger.Error("failed to store analysis", "user", userID, "error", err)
		m.broadcast(ErrorEvent{Service: "storage", Error: err})
	}
	report.ID = id

	m.checkNotifications(userID, result.CurrentRisk)
	m.broadcast(AnalysisUpdatedEvent{Report: report})
	return report, nil
}

// AnalyzeRaw analyzes a caller-supplied day-indexed window without storing it.
func (m *Manager) AnalyzeRaw(raw any) (*models.AnalysisResult, error) {
	return m.analyzer.AnalyzeRaw(raw)
}

// persist stores the report, retrying transient failures such as a busy database.
func (m *Manager) persist(ctx context.Context, report *models.UserReport) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	var id string
	op := func() error {
		var err error
		id, err = m.database.SaveAnalysis(ctx, report.UserID, report.Result, report.AnalyzedAt)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return id, nil
}

// checkNotifications alerts when a user's risk rises into High or Critical.
func (m *Manager) checkNotifications(userID string, current models.RiskAssessment) {
	m.mu.Lock()
	previous, exists := m.previousLevels[userID]
	m.previousLevels[userID] = current.RiskLevel
	m.mu.Unlock()

	if !exists || !m.cfg.Notify {
		return
	}

	if current.RiskLevel >= models.RiskHigh && current.RiskLevel > previous {
		title := fmt.Sprintf("Screen time risk: %s", current.RiskLabel)
		body := fmt.Sprintf("Risk for %s rose from %s to %s (score %d)",
			userID, previous, current.RiskLevel, current.Score)
		if err := notify(title, body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
}

// History returns stored analyses for a user, newest first.
func (m *Manager) History(ctx context.Context, userID string, limit int) ([]models.StoredAnalysis, error) {
	return m.database.GetAnalysisHistory(ctx, userID, limit)
}

// Users returns all users with recorded sessions.
func (m *Manager) Users(ctx context.Context) ([]string, error) {
	return m.database.ListUsers(ctx)
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats(ctx context.Context) StatsEvent {
	st := m.risk.Status()
	stats := StatsEvent{ModelLoaded: st.Loaded, ModelSource: st.Source}

	users, err := m.database.ListUsers(ctx)
	if err != nil {
		logger.Error("failed to list users", "error", err)
		return stats
	}
	stats.UserCount = len(users)
	return stats
}

// ModelStatus reports the installed risk model.
func (m *Manager) ModelStatus() risk.ModelStatus {
	return m.risk.Status()
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
