// Package detection implements StrIEM's Sigma detection worker: a
// single goroutine that drains the upstream event bus, matches each event
// against the loaded rule collection, and republishes OCSF
// detection_finding events onto the internal bus.
//
// The state machine described by this project's upstream
// (Idle -> Receiving -> Matching -> Publishing -> Idle) is not control
// flow here — the control flow is the worker's own for/select loop — it
// is exposed purely for observability through Worker.State. Neither the
// health endpoints nor pkg/metrics read it.
package detection
