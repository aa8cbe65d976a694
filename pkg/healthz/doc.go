// Package healthz serves the daemon's liveness, readiness, and metrics
// endpoints: /healthz answers every GET with 200 once the process is up, /readyz
// checks that the rule collection and storage writer map (when storage is
// enabled) are initialized, and /metrics serves pkg/metrics' Prometheus
// handler.
package healthz
