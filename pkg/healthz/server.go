package healthz

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/striemhq/striem/pkg/metrics"
)

// Checker reports whether the supervisor considers itself ready to accept
// traffic, and why not when it doesn't.
type Checker interface {
	Ready() (bool, map[string]string)
}

// Server serves /healthz, /readyz, and /metrics on one HTTP listener.
type Server struct {
	checker   Checker
	fqdn      string
	startedAt time.Time
	mux       *http.ServeMux
}

// NewServer wires a Server around checker. fqdn is carried into both
// response bodies so operators can tell instances apart in aggregated
// logs, per the original's fqdn config field.
func NewServer(checker Checker, fqdn string) *Server {
	s := &Server{checker: checker, fqdn: fqdn, startedAt: time.Now()}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.liveness)
	mux.HandleFunc("/readyz", s.readiness)
	mux.Handle("/metrics", metrics.Handler())
	s.mux = mux
	return s
}

// Handler exposes the underlying mux for embedding in another server, or
// for tests that don't need a real listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

type livenessResponse struct {
	Status string    `json:"status"`
	FQDN   string    `json:"fqdn,omitempty"`
	Uptime string    `json:"uptime"`
	Time   time.Time `json:"time"`
}

func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(livenessResponse{
		Status: "alive",
		FQDN:   s.fqdn,
		Uptime: time.Since(s.startedAt).String(),
		Time:   time.Now(),
	})
}

type readinessResponse struct {
	Status string            `json:"status"`
	FQDN   string            `json:"fqdn,omitempty"`
	Checks map[string]string `json:"checks"`
	Time   time.Time         `json:"time"`
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready, checks := s.checker.Ready()

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(readinessResponse{
		Status: state,
		FQDN:   s.fqdn,
		Checks: checks,
		Time:   time.Now(),
	})
}
