package healthz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	ready  bool
	checks map[string]string
}

func (f fakeChecker) Ready() (bool, map[string]string) { return f.ready, f.checks }

func TestLivenessHandler(t *testing.T) {
	s := NewServer(fakeChecker{ready: true}, "collector-1.internal")

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"GET request succeeds", http.MethodGet, http.StatusOK},
		{"POST request fails", http.MethodPost, http.StatusMethodNotAllowed},
		{"DELETE request fails", http.MethodDelete, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/healthz", nil)
			w := httptest.NewRecorder()

			s.liveness(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp livenessResponse
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "alive", resp.Status)
				assert.Equal(t, "collector-1.internal", resp.FQDN)
				assert.NotZero(t, resp.Time)
			}
		})
	}
}

func TestReadinessHandlerReady(t *testing.T) {
	s := NewServer(fakeChecker{ready: true, checks: map[string]string{"detections": "ok"}}, "collector-1.internal")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	s.readiness(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp readinessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["detections"])
}

func TestReadinessHandlerNotReady(t *testing.T) {
	s := NewServer(fakeChecker{ready: false, checks: map[string]string{"storage": "no writers resolved"}}, "")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	s.readiness(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp readinessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "no writers resolved", resp.Checks["storage"])
}

func TestReadinessHandlerRejectsNonGet(t *testing.T) {
	s := NewServer(fakeChecker{ready: true}, "")

	req := httptest.NewRequest(http.MethodPost, "/readyz", nil)
	w := httptest.NewRecorder()
	s.readiness(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpointIsWired(t *testing.T) {
	s := NewServer(fakeChecker{ready: true}, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "striem_")
}
