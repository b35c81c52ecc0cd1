package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services"
)

// EventSource is implemented by backends that broadcast service events.
// When the Backend implements it, GET /api/events streams them as
// Server-Sent Events.
type EventSource interface {
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
	Unsubscribe(ch chan services.ServiceEvent)
}

const sseHeartbeatInterval = 15 * time.Second

type streamEvent struct {
	name string
	data any
}

// encodeEvent maps a service event onto its stream name and payload.
// Events with no external meaning are dropped.
func encodeEvent(ev services.ServiceEvent) (streamEvent, bool) {
	switch e := ev.(type) {
	case services.AnalysisUpdatedEvent:
		if e.Report == nil || e.Report.Result == nil {
			return streamEvent{}, false
		}
		risk := e.Report.Result.CurrentRisk
		return streamEvent{"analysis", map[string]any{
			"user_id":      e.Report.UserID,
			"analysis_id":  e.Report.ID,
			"current_risk": risk,
			"risk_color":   risk.RiskLevel.Color(),
			"analyzed_at":  e.Report.AnalyzedAt,
		}}, true
	case services.UsageLoggedEvent:
		return streamEvent{"usage", map[string]any{
			"user_id":  e.UserID,
			"sessions": e.Sessions,
		}}, true
	case services.ModelReloadedEvent:
		data := map[string]any{
			"loaded": e.Status.Loaded,
			"source": e.Status.Source,
		}
		if e.Error != nil {
			data["error"] = e.Error.Error()
		}
		return streamEvent{"model", data}, true
	case services.ErrorEvent:
		msg := ""
		if e.Error != nil {
			msg = e.Error.Error()
		}
		return streamEvent{"error", map[string]any{"service": e.Service, "error": msg}}, true
	default:
		return streamEvent{}, false
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch, _ := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Warn("event stream unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-ch:
			if !ok {
				return
			}
			se, keep := encodeEvent(ev)
			if !keep {
				continue
			}
			data, err := json.Marshal(se.data)
			if err != nil {
				logger.Error("failed to marshal event", "event", se.name, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", se.name, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
