package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/connexta/keip-webhook/internal/certmanager"
	"github.com/connexta/keip-webhook/internal/synthesizer"
)

const minimalSyncBody = `{"parent": {"metadata": {"name": "r1"}, "spec": {"routeConfigMap": "r1", "replicas": 1}}, "children": {}}`

func newTestServer(t *testing.T) *httptest.Server {
	synth := synthesizer.New(synthesizer.Config{IntegrationImage: "keip-integration"})
	synth.Clock = clocktesting.NewFakePassiveClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	return newTestServerWithOptions(t, synth, HandlerOptions{})
}

func newTestServerWithOptions(t *testing.T, synth *synthesizer.Synthesizer, opts HandlerOptions) *httptest.Server {
	srv := httptest.NewServer(NewHandler(testr.New(t), synth, certmanager.New(certmanager.IssuerPolicyExclusive), opts))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return resp, out
}

func TestSyncHandler(t *testing.T) {
	srv := newTestServer(t)
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("sync", "200"))

	resp, out := post(t, srv, SyncPath, minimalSyncBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	assert.Equal(t, map[string]any{"expectedReplicas": float64(1), "readyReplicas": float64(0), "runningReplicas": float64(0)}, out["status"])
	children := out["children"].([]any)
	require.Len(t, children, 2)
	assert.Equal(t, "Deployment", children[0].(map[string]any)["kind"])
	assert.Equal(t, "Service", children[1].(map[string]any)["kind"])

	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("sync", "200")))
}

func TestSyncHandlerErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		detail string
	}{
		{
			name:   "malformed sync",
			path:   SyncPath,
			body:   `{"parent":`,
			detail: "Failed to parse request body: ",
		},
		{
			name:   "missing parent",
			path:   SyncPath,
			body:   `{"children": {}}`,
			detail: "Missing field from request: parent",
		},
		{
			name:   "missing route config map",
			path:   SyncPath,
			body:   `{"parent": {"metadata": {"name": "r1"}, "spec": {"replicas": 1}}, "children": {}}`,
			detail: "Missing field from request: parent.spec.routeConfigMap",
		},
		{
			name:   "malformed certificate",
			path:   CertificateSyncPath,
			body:   `not json`,
			detail: "Failed to parse request body: ",
		},
		{
			name:   "missing object",
			path:   CertificateSyncPath,
			body:   `{}`,
			detail: "Missing field from request: object",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := post(t, srv, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, out["detail"], tc.detail)
			if !strings.HasSuffix(tc.detail, ": ") {
				assert.Equal(t, tc.detail, out["detail"])
			}
		})
	}
}

func TestSyncHandlerBodyTooLarge(t *testing.T) {
	synth := synthesizer.New(synthesizer.Config{IntegrationImage: "keip-integration"})
	srv := newTestServerWithOptions(t, synth, HandlerOptions{MaxBodyBytes: 64})

	resp, out := post(t, srv, SyncPath, minimalSyncBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "Request body exceeds 64 bytes", out["detail"])

	resp, _ = post(t, srv, CertificateSyncPath, `{"object": {"metadata": {"name": "r1", "namespace": "ns", "annotations": {"a": "`+strings.Repeat("b", 64)+`"}}}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCertificateHandler(t *testing.T) {
	srv := newTestServer(t)

	body := `{"object": {"metadata": {"name": "r1", "namespace": "ns", "annotations": {"cert-manager.io/issuer": "a", "cert-manager.io/cluster-issuer": "b"}}, "spec": {}}}`
	resp, out := post(t, srv, CertificateSyncPath, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": map[string]any{}, "attachments": []any{}}, out)
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + StatusPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "UP"}`, string(data))
}

func TestMetricsHandler(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, SyncPath, minimalSyncBody)

	resp, err := http.Get(srv.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "keip_webhook_requests_total")
	assert.Contains(t, string(data), "keip_webhook_request_duration_seconds")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + SyncPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+StatusPath, nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "caller-supplied")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "caller-supplied", resp.Header.Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	synth := synthesizer.New(synthesizer.Config{IntegrationImage: "keip-integration"})
	srv := newTestServerWithOptions(t, synth, HandlerOptions{RateLimit: 0.001, RateBurst: 1})

	resp, _ := post(t, srv, SyncPath, minimalSyncBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := post(t, srv, SyncPath, minimalSyncBody)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", out["detail"])

	// Status isn't limited
	status, err := http.Get(srv.URL + StatusPath)
	require.NoError(t, err)
	status.Body.Close()
	assert.Equal(t, http.StatusOK, status.StatusCode)
}

func TestServerShutdown(t *testing.T) {
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, http.NotFoundHandler(), testr.New(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
