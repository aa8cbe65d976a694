package detection

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/striemhq/striem/pkg/bus"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
	"github.com/striemhq/striem/pkg/rules"
)

// State is purely observational — it never gates control flow, only
// reports where in a cycle the worker currently is.
type State int32

const (
	StateIdle State = iota
	StateReceiving
	StateMatching
	StatePublishing
)

func (s State) String() string {
	switch s {
	case StateReceiving:
		return "receiving"
	case StateMatching:
		return "matching"
	case StatePublishing:
		return "publishing"
	default:
		return "idle"
	}
}

// Worker drains a batch bus, matches every event in each batch against
// rules, and republishes the resulting findings (possibly an empty batch)
// onto a second bus.
type Worker struct {
	src   *bus.Subscription[*event.Batch]
	dest  *bus.Bus[*event.Batch]
	rules rules.Collection

	state State
}

// NewWorker wires a Worker between an upstream subscription and an
// internal findings bus.
func NewWorker(src *bus.Subscription[*event.Batch], dest *bus.Bus[*event.Batch], collection rules.Collection) *Worker {
	return &Worker{src: src, dest: dest, rules: collection}
}

// State reports the worker's current phase for observability.
func (w *Worker) State() State {
	return w.state
}

// Run processes batches until ctx is canceled or the source bus closes.
func (w *Worker) Run(ctx context.Context) {
	for {
		w.state = StateReceiving
		batch, lagged, err := w.src.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Logger.Info().Msg("detection worker shutting down")
				return
			}
			log.Logger.Info().Err(err).Msg("detection worker source channel closed")
			return
		}
		if lagged != nil {
			metrics.BusDropsTotal.WithLabelValues("upstream").Add(float64(lagged.Count))
			log.Logger.Warn().Uint64("dropped_batches", lagged.Count).Msg("detection worker lagged behind upstream bus")
			continue
		}

		w.state = StateMatching
		var findings []event.Event
		for _, e := range batch.Events {
			fs, err := w.apply(ctx, e)
			if err != nil {
				log.Logger.Error().Err(err).Str("event_id", e.ID).Msg("error applying detection rules")
				continue
			}
			findings = append(findings, fs...)
		}

		w.state = StatePublishing
		if len(findings) == 0 {
			log.Logger.Trace().Msg("detection cycle matched no rules")
		}
		w.dest.Publish(&event.Batch{Events: findings})
		w.state = StateIdle
	}
}

// apply implements the four-step match cycle: prefer raw_data for
// OCSF-normalized events, match against the rule collection (which filters
// by logsource itself, per rule, inside Match), resolve each matched rule
// id, and build the resulting findings.
func (w *Worker) apply(ctx context.Context, e event.Event) ([]event.Event, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.DetectionMatchDuration)

	refData := e.Data
	if isOCSF(e.Metadata) {
		if raw, ok := rawDataOf(e.Data); ok {
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				refData = parsed
			}
		}
	}

	refEvent := &event.Event{ID: e.ID, Data: refData, Metadata: e.Metadata}

	ids, err := w.rules.Match(ctx, refEvent)
	if err != nil {
		return nil, err
	}

	findings := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		desc, ok := w.rules.Get(id)
		if !ok {
			continue
		}
		metrics.FindingsTotal.WithLabelValues(id).Inc()
		log.WithRuleID(id).Debug().Str("event_id", e.ID).Msg("rule matched")
		findings = append(findings, NewFinding(e, desc))
	}
	return findings, nil
}

func isOCSF(metadata map[string]any) bool {
	v, ok := metadata["ocsf"].(bool)
	return ok && v
}

func rawDataOf(data any) (string, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	raw, ok := obj["raw_data"].(string)
	return raw, ok
}
