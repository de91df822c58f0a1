// Package webhook serves the sync hooks over HTTP.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/connexta/keip-webhook/internal/certmanager"
	"github.com/connexta/keip-webhook/internal/inputs"
	"github.com/connexta/keip-webhook/internal/synthesizer"
	"github.com/connexta/keip-webhook/pkg/function"
)

const (
	SyncPath            = "/sync"
	CertificateSyncPath = "/addons/certmanager/sync"
	StatusPath          = "/status"
	MetricsPath         = "/metrics"

	// Hook requests carry a single object and its children.
	DefaultMaxBodyBytes = 8 << 20
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// HandlerOptions tune the hook endpoints.
type HandlerOptions struct {
	// RateLimit caps hook requests per second across both hooks. Zero disables limiting.
	RateLimit float64
	RateBurst int

	// MaxBodyBytes caps the size of a hook request body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewHandler routes hook requests to the given synthesizers.
func NewHandler(logger logr.Logger, synth *synthesizer.Synthesizer, certs *certmanager.Synthesizer, opts HandlerOptions) http.Handler {
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+SyncPath, withMetrics("sync", withRateLimit(limiter, hookHandler(maxBody, synth.SyncJSON))))
	mux.Handle("POST "+CertificateSyncPath, withMetrics("certmanager", withRateLimit(limiter, hookHandler(maxBody, certs.SyncJSON))))
	mux.HandleFunc("GET "+StatusPath, handleStatus)
	mux.Handle("GET "+MetricsPath, promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return withRequestLogger(logger, mux)
}

func hookHandler[T any](maxBody int64, fn function.HookFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logr.FromContextOrDiscard(ctx)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if !errors.As(err, &tooLarge) {
				err = errors.Join(inputs.ErrMalformedInput, err)
			}
			writeError(w, logger, err)
			return
		}
		logger.V(1).Info("received hook request", "body", string(body))

		resp, err := fn(ctx, body)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		js, err := json.Marshal(resp)
		if err != nil {
			writeError(w, logger, fmt.Errorf("encoding response: %w", err))
			return
		}
		logger.V(1).Info("sending hook response", "body", string(js))
		writeJSON(w, http.StatusOK, js)
	}
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []byte(`{"status":"UP"}`))
}

// writeError maps input errors to 400s, oversized bodies to a 413 and everything else to a 500.
func writeError(w http.ResponseWriter, logger logr.Logger, err error) {
	code := http.StatusInternalServerError
	detail := "Internal server error"
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		code = http.StatusRequestEntityTooLarge
		detail = fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)
	case errors.Is(err, inputs.ErrMissingField):
		var mfe *inputs.MissingFieldError
		field := err.Error()
		if errors.As(err, &mfe) {
			field = mfe.Field
		}
		code = http.StatusBadRequest
		detail = "Missing field from request: " + field
	case errors.Is(err, inputs.ErrMalformedInput):
		code = http.StatusBadRequest
		detail = "Failed to parse request body: " + strings.ReplaceAll(err.Error(), "\n", ": ")
	}

	if code >= http.StatusInternalServerError {
		logger.Error(err, "hook failed")
	} else {
		logger.Info("rejected hook request", "error", err.Error())
	}

	js, _ := json.Marshal(errorResponse{Detail: detail})
	writeJSON(w, code, js)
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
