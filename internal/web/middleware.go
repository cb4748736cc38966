package web

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"scriber/internal/logging"
)

// RequestID tags every request with an identifier, honoring one the
// client already sent in X-Request-ID. The identifier travels on the
// request context and is echoed back in the response header.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
		})
	}
}

// RequestLogging logs one line per completed request with method,
// path, status, and duration.
func RequestLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			attrs := []any{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", recorder.status),
				logging.Duration("duration", time.Since(start)),
			}
			if id, ok := logging.RequestIDFromContext(r.Context()); ok {
				attrs = append(attrs, logging.String(logging.FieldRequestID, id))
			}
			logger.Info("request", attrs...)
		})
	}
}

// Recovery turns handler panics into 500 responses instead of taking
// the whole server down.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						logging.String("path", r.URL.Path),
						logging.Any("panic", rec))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for logging while
// forwarding Flush and Unwrap so streaming responses keep working
// behind the middleware stack.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer for
// per-request deadline control.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
