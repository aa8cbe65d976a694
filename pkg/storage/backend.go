package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/striemhq/striem/pkg/columnar"
	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
	"github.com/striemhq/striem/pkg/ocsf"
	"github.com/striemhq/striem/pkg/schema"
)

// route pairs a class's parsed schema with the Writer routing table sends
// its events to.
type route struct {
	class  *schema.Class
	writer *Writer
}

// Backend is the routing table built once at startup: one Writer per OCSF
// class resolved from a schema directory walk. Routing an event with a
// missing or unrecognized class_uid is a hard error rather than a silent
// drop, matching this project's upstream.
type Backend struct {
	base   string
	routes map[ocsf.Class]*route
}

// NewBackend walks schemaDir, builds one Parquet schema and Writer per
// resolved OCSF class, and returns the routing table. Writer output lands
// under <outDir>/<category>/<class>/.
func NewBackend(schemaDir, outDir string) (*Backend, error) {
	loaded, err := schema.LoadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("%w: load schemas: %v", errs.ErrFatalInit, err)
	}

	routes := make(map[ocsf.Class]*route, len(loaded))
	for _, l := range loaded {
		pschema := columnar.BuildSchema(l.Schema)
		dir := filepath.Join(outDir, l.Category, l.Name)
		w, err := NewWriter(dir, pschema, l.Name, l.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: writer for class %s: %v", errs.ErrFatalInit, l.Name, err)
		}
		routes[l.Class] = &route{class: l.Schema, writer: w}
	}

	return &Backend{base: outDir, routes: routes}, nil
}

// RouteCount reports how many class writers the routing table holds, for
// readiness checks that want to confirm storage actually came up.
func (b *Backend) RouteCount() int {
	return len(b.routes)
}

// Run starts the rotation loop for every writer in the routing table.
func (b *Backend) Run() {
	for _, r := range b.routes {
		r.writer.Run()
	}
}

// Stop finalizes every writer's active file.
func (b *Backend) Stop() {
	for _, r := range b.routes {
		r.writer.Stop()
	}
}

// Write converts a decoded event against its class's schema and appends it
// to that class's Writer. class_uid is read from the top-level class_uid
// field of the event's data, which must be a JSON number.
func (b *Backend) Write(ev event.Event) error {
	obj, ok := ev.Data.(map[string]any)
	if !ok {
		metrics.RoutingFailuresTotal.Inc()
		return fmt.Errorf("%w: event data is not a JSON object", errs.ErrRoutingFailed)
	}

	classUID, ok := classUIDOf(obj)
	if !ok {
		metrics.RoutingFailuresTotal.Inc()
		return fmt.Errorf("%w: event has no numeric class_uid", errs.ErrRoutingFailed)
	}

	r, ok := b.routes[ocsf.Class(classUID)]
	if !ok {
		metrics.RoutingFailuresTotal.Inc()
		return fmt.Errorf("%w: no writer registered for class_uid %d", errs.ErrRoutingFailed, classUID)
	}

	record, err := columnar.Convert(obj, r.class)
	if err != nil {
		kind := "optional"
		if errors.Is(err, errs.ErrConversionFailedRequired) {
			kind = "required"
		}
		metrics.ConversionFailuresTotal.WithLabelValues(kind).Inc()
		return err
	}
	return r.writer.Write(record)
}

// WriteBatch writes every event in the batch, logging and continuing past
// per-event failures so one bad event never stalls the rest of the batch.
func (b *Backend) WriteBatch(ctx context.Context, batch *event.Batch) {
	for _, ev := range batch.Events {
		if err := b.Write(ev); err != nil {
			log.Logger.Error().Err(err).Str("event_id", ev.ID).Msg("failed to write event to storage")
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func classUIDOf(obj map[string]any) (uint64, bool) {
	v, ok := obj["class_uid"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	default:
		return 0, false
	}
}
