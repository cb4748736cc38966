package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"scriber/internal/logging"
)

const (
	defaultHeartbeat  = 15 * time.Second
	defaultFetchLimit = 64
)

// Handler streams hub events to a client as Server-Sent Events.
//
// Clients may resume after a dropped connection by sending the
// standard Last-Event-ID header (or an after query parameter); events
// with lower sequence numbers are not replayed. A job query parameter
// restricts the stream to a single job.
type Handler struct {
	hub       *Hub
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewHandler wraps hub for HTTP delivery.
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		hub:       hub,
		logger:    logger.With(logging.String(logging.FieldComponent, "sse")),
		heartbeat: defaultHeartbeat,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The server's write timeout would sever an open stream, so clear
	// the deadline on this connection. Not every writer supports it
	// (test recorders do not), in which case there is nothing to clear.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	jobID := r.URL.Query().Get("job")
	cursor := resumeCursor(r)

	if first := h.hub.FirstSequence(); cursor != 0 && first > cursor+1 {
		// The client slept through evictions. Tell it, then continue
		// from what is still buffered.
		fmt.Fprintf(w, ": missed events before seq %d\n\n", first)
		flusher.Flush()
	}

	ctx := r.Context()
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, h.heartbeat)
		events, next, err := h.hub.Fetch(fetchCtx, cursor, defaultFetchLimit, true)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				h.logger.Debug("client disconnected", logging.String("job_id", jobID))
				return
			}
			// Heartbeat interval elapsed with nothing to send.
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
			continue
		}

		cursor = next
		for _, event := range events {
			if jobID != "" && event.JobID != jobID {
				continue
			}
			if err := writeEvent(w, event); err != nil {
				h.logger.Debug("event write failed", logging.Error(err))
				return
			}
		}
		flusher.Flush()
	}
}

func resumeCursor(r *http.Request) uint64 {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		raw = r.URL.Query().Get("after")
	}
	if raw == "" {
		return 0
	}
	cursor, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return cursor
}

func writeEvent(w http.ResponseWriter, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Sequence, event.Type, payload)
	return err
}
