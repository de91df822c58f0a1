package webhook

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// withRequestLogger attaches a logger carrying the request's id to the request context,
// and logs each request once it completes.
func withRequestLogger(base logr.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		logger := base.WithValues("requestID", requestID)
		next.ServeHTTP(rw, r.WithContext(logr.NewContext(r.Context(), logger)))

		logger.V(1).Info("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"latency", time.Since(start).Milliseconds())
	})
}

// withMetrics records the request count and latency of a hook.
func withMetrics(hook string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		requestDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
		requestsTotal.WithLabelValues(hook, strconv.Itoa(rw.statusCode)).Inc()
	})
}

// withRateLimit rejects requests beyond the limiter's budget with a 429.
// A nil limiter disables limiting.
func withRateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			logr.FromContextOrDiscard(r.Context()).Info("rate limited hook request", "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, []byte(`{"detail":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
