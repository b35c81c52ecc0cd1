// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/risk"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial  bool
	Analysis bool
	History  bool
	Stats    bool
}

// State is shared between the root model and its tabs.
type State struct {
	mu sync.RWMutex

	UserID       string
	Report       *models.UserReport
	History      []models.StoredAnalysis
	HistoryLimit int
	ModelStatus  risk.ModelStatus
	Stats        *services.StatsEvent

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state with the initial load pending.
func NewState() *State {
	return &State{
		HistoryLimit:  DefaultHistoryLimit,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "analysis":
		s.Loading.Analysis = loading
	case "history":
		s.Loading.History = loading
	case "stats":
		s.Loading.Stats = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Analysis ||
		s.Loading.History ||
		s.Loading.Stats
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Analysis {
		resources = append(resources, "analysis")
	}
	if s.Loading.History {
		resources = append(resources, "history")
	}
	if s.Loading.Stats {
		resources = append(resources, "stats")
	}
	return resources
}

// SetUserID sets the user whose usage is displayed.
func (s *State) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserID = userID
}

// GetUserID returns the displayed user.
func (s *State) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID
}

// SetReport stores the latest analysis and returns the one it replaced.
func (s *State) SetReport(report *models.UserReport) *models.UserReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.Report
	s.Report = report
	s.LastUpdated = time.Now()
	return previous
}

// GetReport returns the latest analysis, or nil before the first one.
func (s *State) GetReport() *models.UserReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Report
}

// SetHistory replaces the stored analysis history.
func (s *State) SetHistory(history []models.StoredAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = history
}

// GetHistory returns a copy of the stored analysis history, newest first.
func (s *State) GetHistory() []models.StoredAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]models.StoredAnalysis, len(s.History))
	copy(history, s.History)
	return history
}

// SetHistoryLimit sets how many stored analyses history loads fetch.
func (s *State) SetHistoryLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HistoryLimit = limit
}

// GetHistoryLimit returns the history fetch size.
func (s *State) GetHistoryLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.HistoryLimit
}

// SetModelStatus updates the risk model status.
func (s *State) SetModelStatus(status risk.ModelStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ModelStatus = status
}

// GetModelStatus returns the risk model status.
func (s *State) GetModelStatus() risk.ModelStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ModelStatus
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// TimeSinceUpdate returns the duration since the last analysis.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
