package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/onnwee/guildxp/activity"
	"github.com/onnwee/guildxp/monitor"
	"github.com/onnwee/guildxp/store"
)

// Handlers carries the dependencies the HTTP endpoints read from.
type Handlers struct {
	activity  *activity.Service
	monitor   *monitor.Monitor
	store     *store.Store
	startedAt time.Time
}

// NewHandlers builds the handler set. monitor may be nil when the stream
// monitor is not configured.
func NewHandlers(svc *activity.Service, mon *monitor.Monitor, st *store.Store) *Handlers {
	return &Handlers{activity: svc, monitor: mon, store: st, startedAt: time.Now()}
}

// HandleHealthz responds to liveness probes by checking that the snapshot
// directory is still accessible.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports a JSON summary of the bot's state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	type statusResponse struct {
		Live          bool       `json:"live"`
		LastCheck     *time.Time `json:"last_check"`
		TrackedUsers  int        `json:"tracked_users"`
		UptimeSeconds int64      `json:"uptime_seconds"`
	}
	resp := statusResponse{
		TrackedUsers:  h.activity.TrackedUsers(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}
	if h.monitor != nil {
		st := h.monitor.Status()
		resp.Live = st.TwitchLive
		resp.LastCheck = st.LastTwitchCheck
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleAdminPoll forces an immediate stream poll cycle. It follows the
// same edge-detection rules as the timer-driven polls.
func (h *Handlers) HandleAdminPoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.monitor == nil {
		http.Error(w, "stream monitor not configured", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	h.monitor.CheckOnce(ctx)
	st := h.monitor.Status()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"live":       st.TwitchLive,
		"last_check": st.LastTwitchCheck,
	})
}
