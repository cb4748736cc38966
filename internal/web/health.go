package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health answers liveness checks with uptime.
type Health struct {
	started time.Time
}

// NewHealth creates the health handler, anchoring uptime at now.
func NewHealth() *Health {
	return &Health{started: time.Now()}
}

// Routes implements Handler.
func (h *Health) Routes() []string {
	return []string{"/healthz"}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
