package app

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services/risk"
)

func reportAt(level models.RiskLevel) *models.UserReport {
	return &models.UserReport{
		Result: &models.AnalysisResult{
			CurrentRisk: models.RiskAssessment{RiskLevel: level, RiskLabel: level.String()},
		},
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil)
	if m.GetState() == nil {
		t.Fatal("State should not be nil")
	}
	if m.GetCommands() == nil {
		t.Fatal("Commands should not be nil")
	}
	if m.GetActiveTab() != TabDashboard {
		t.Errorf("Expected active tab Dashboard, got %v", m.GetActiveTab())
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		tab  TabID
		want string
	}{
		{TabDashboard, "Dashboard"},
		{TabTrends, "Trends"},
		{TabInfo, "Info"},
		{TabID(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.tab.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestModel_Init(t *testing.T) {
	m := NewModel(nil)
	if m.Init() == nil {
		t.Error("Init should return commands")
	}

	notifs := m.GetState().GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected loading notification after Init, got %+v", notifs)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m := NewModel(nil)

	tests := []struct {
		key  tea.KeyMsg
		want TabID
	}{
		{runeKey('2'), TabTrends},
		{runeKey('3'), TabInfo},
		{runeKey('1'), TabDashboard},
		{tea.KeyMsg{Type: tea.KeyTab}, TabTrends},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabDashboard},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabInfo},
	}

	for _, tt := range tests {
		m.Update(tt.key)
		if m.GetActiveTab() != tt.want {
			t.Errorf("After %q expected %v, got %v", tt.key.String(), tt.want, m.GetActiveTab())
		}
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel(nil)
	cmd := m.handleKeyMsg(runeKey('q'))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := NewModel(nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 10})

	m.Update(runeKey('?'))
	if !m.showHelp {
		t.Fatal("Help should be visible")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("Help overlay should be rendered")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("Esc should close help")
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(nil)
	if !strings.Contains(m.View(), "Loading...") {
		t.Error("View before sizing should show loading")
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, name := range []string{"Dashboard", "Trends", "Info"} {
		if !strings.Contains(view, name) {
			t.Errorf("Navbar should contain %q", name)
		}
	}
}

func TestModel_AnalysisLoaded(t *testing.T) {
	m := NewModel(nil)
	report := reportAt(models.RiskModerate)

	cmds := m.handleAnalysisLoaded(AnalysisLoadedMsg{Report: report})
	if len(cmds) != 0 {
		t.Errorf("First report should not notify, got %d commands", len(cmds))
	}
	if m.GetState().GetReport() != report {
		t.Error("Report should be stored")
	}
	if m.GetState().IsInitialLoading() {
		t.Error("Initial loading should be cleared")
	}

	if cmds := m.handleAnalysisLoaded(AnalysisLoadedMsg{Report: report}); len(cmds) != 0 {
		t.Error("Same report delivered twice should be ignored")
	}
}

func TestModel_AnalysisLoaded_OtherUser(t *testing.T) {
	m := NewModel(nil)
	m.GetState().SetUserID("alice")

	report := reportAt(models.RiskLow)
	report.UserID = "bob"
	m.handleAnalysisLoaded(AnalysisLoadedMsg{Report: report})

	if m.GetState().GetReport() != nil {
		t.Error("Report for another user should be ignored")
	}
}

func TestModel_AnalysisLoaded_Error(t *testing.T) {
	m := NewModel(nil)
	cmds := m.handleAnalysisLoaded(AnalysisLoadedMsg{Error: errors.New("boom")})
	if len(cmds) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(cmds))
	}
	msg, ok := cmds[0]().(AddNotificationMsg)
	if !ok || msg.Type != NotificationError {
		t.Errorf("Expected error notification, got %+v", msg)
	}
}

func TestModel_Escalation(t *testing.T) {
	tests := []struct {
		name   string
		from   models.RiskLevel
		to     models.RiskLevel
		notify bool
	}{
		{"moderate to high", models.RiskModerate, models.RiskHigh, true},
		{"high to critical", models.RiskHigh, models.RiskCritical, true},
		{"low to moderate", models.RiskLow, models.RiskModerate, false},
		{"high to high", models.RiskHigh, models.RiskHigh, false},
		{"critical to high", models.RiskCritical, models.RiskHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			m.handleAnalysisLoaded(AnalysisLoadedMsg{Report: reportAt(tt.from)})
			cmds := m.handleAnalysisLoaded(AnalysisLoadedMsg{Report: reportAt(tt.to)})

			if !tt.notify {
				if len(cmds) != 0 {
					t.Errorf("Expected no notification, got %d commands", len(cmds))
				}
				return
			}
			if len(cmds) != 1 {
				t.Fatalf("Expected 1 command, got %d", len(cmds))
			}
			msg, ok := cmds[0]().(AddNotificationMsg)
			if !ok {
				t.Fatal("Expected AddNotificationMsg")
			}
			if msg.Type != NotificationWarning {
				t.Errorf("Expected warning, got %v", msg.Type)
			}
			want := "Risk rose from " + tt.from.String() + " to " + tt.to.String()
			if msg.Message != want {
				t.Errorf("Expected %q, got %q", want, msg.Message)
			}
		})
	}
}

func TestModel_HistoryLoaded(t *testing.T) {
	m := NewModel(nil)
	m.GetState().SetUserID("alice")
	m.GetState().SetLoading("history", true)

	m.handleHistoryLoaded(HistoryLoadedMsg{UserID: "bob", History: []models.StoredAnalysis{{ID: "x"}}})
	if len(m.GetState().GetHistory()) != 0 {
		t.Error("History for another user should be ignored")
	}

	m.handleHistoryLoaded(HistoryLoadedMsg{UserID: "alice", History: []models.StoredAnalysis{{ID: "a"}, {ID: "b"}}})
	if got := len(m.GetState().GetHistory()); got != 2 {
		t.Errorf("Expected 2 history entries, got %d", got)
	}
	if m.GetState().Loading.History {
		t.Error("History loading should be cleared")
	}
}

func TestModel_ServiceEvents(t *testing.T) {
	t.Run("model reloaded", func(t *testing.T) {
		tests := []struct {
			name  string
			event services.ModelReloadedEvent
			want  NotificationType
		}{
			{"loaded", services.ModelReloadedEvent{Status: risk.ModelStatus{Loaded: true}}, NotificationSuccess},
			{"removed", services.ModelReloadedEvent{}, NotificationInfo},
			{"failed", services.ModelReloadedEvent{Error: errors.New("bad json")}, NotificationWarning},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := NewModel(nil)
				cmd := m.handleServiceEvent(tt.event)
				if cmd == nil {
					t.Fatal("Expected notification command")
				}
				msg, ok := cmd().(AddNotificationMsg)
				if !ok {
					t.Fatal("Expected AddNotificationMsg")
				}
				if msg.Type != tt.want {
					t.Errorf("Expected %v, got %v", tt.want, msg.Type)
				}
				if m.GetState().GetModelStatus().Loaded != tt.event.Status.Loaded {
					t.Error("Model status should be updated")
				}
			})
		}
	})

	t.Run("analysis updated", func(t *testing.T) {
		m := NewModel(nil)
		report := reportAt(models.RiskHigh)
		cmd := m.handleServiceEvent(services.AnalysisUpdatedEvent{Report: report})
		msg, ok := cmd().(AnalysisLoadedMsg)
		if !ok || msg.Report != report {
			t.Error("Expected AnalysisLoadedMsg carrying the report")
		}
	})

	t.Run("stats", func(t *testing.T) {
		m := NewModel(nil)
		if cmd := m.handleServiceEvent(services.StatsEvent{UserCount: 3}); cmd != nil {
			t.Error("Stats event should not produce a command")
		}
		if stats := m.GetState().GetStats(); stats == nil || stats.UserCount != 3 {
			t.Errorf("Expected UserCount 3, got %+v", stats)
		}
	})

	t.Run("error", func(t *testing.T) {
		m := NewModel(nil)
		cmd := m.handleServiceEvent(services.ErrorEvent{Service: "db", Error: errors.New("locked")})
		msg, ok := cmd().(AddNotificationMsg)
		if !ok || msg.Message != "[db] locked" {
			t.Errorf("Unexpected notification %+v", msg)
		}
	})

	t.Run("usage logged without manager", func(t *testing.T) {
		m := NewModel(nil)
		if cmd := m.handleServiceEvent(services.UsageLoggedEvent{}); cmd != nil {
			t.Error("Expected no command without a manager")
		}
	})
}

func TestModel_RefreshWithoutManager(t *testing.T) {
	m := NewModel(nil)
	if cmds := m.handleRefresh(RefreshMsg{Resource: "all"}); cmds != nil {
		t.Error("Refresh without a manager should be a no-op")
	}
}

func TestModel_Notifications(t *testing.T) {
	m := NewModel(nil)
	m.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "saved", Duration: DefaultNotificationDuration})

	notifs := m.GetState().GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}

	m.Update(RemoveNotificationMsg{ID: notifs[0].ID})
	if len(m.GetState().GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestModel_SwitchTabAnnounces(t *testing.T) {
	m := NewModel(nil)
	cmd := m.handleKeyMsg(runeKey('2'))
	if cmd == nil {
		t.Fatal("Expected a command announcing the switch")
	}
	msg, ok := cmd().(TabSwitchMsg)
	if !ok || msg.Tab != TabTrends {
		t.Errorf("Expected TabSwitchMsg for Trends, got %+v", msg)
	}
}

func TestModel_GenericMessages(t *testing.T) {
	m := NewModel(nil)

	m.Update(ToggleHelpMsg{})
	if !m.showHelp {
		t.Error("ToggleHelpMsg should show help")
	}

	cmds := m.handleAppMsg(ErrorMsg{Context: "import", Error: errors.New("bad file")})
	if len(cmds) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(cmds))
	}
	msg, ok := cmds[0]().(AddNotificationMsg)
	if !ok || msg.Message != "import: bad file" {
		t.Errorf("Unexpected notification %+v", msg)
	}

	m.Update(StartLoadingMsg{Resource: "stats"})
	if !m.GetState().Loading.Stats {
		t.Error("Stats should be loading")
	}
	m.Update(StopLoadingMsg{Resource: "stats"})
	if m.GetState().Loading.Stats {
		t.Error("Stats should have stopped loading")
	}
}
