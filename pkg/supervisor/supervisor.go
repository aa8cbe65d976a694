package supervisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/striemhq/striem/pkg/bus"
	"github.com/striemhq/striem/pkg/config"
	"github.com/striemhq/striem/pkg/detection"
	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/forwarder"
	"github.com/striemhq/striem/pkg/ingest"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
	"github.com/striemhq/striem/pkg/rules"
	"github.com/striemhq/striem/pkg/storage"
)

// upstreamCapacity and internalCapacity size the two event buses: upstream
// carries raw ingested batches (higher volume, wider fan-out), internal
// carries detection findings (lower volume), matching §4.1's tuning.
const (
	upstreamCapacity = 256
	internalCapacity = 64
	sysCapacity      = 1
)

// Supervisor owns the process-lifetime state: the event buses, the loaded
// rule collection, and whichever of ingest/detection/storage/forwarder the
// active config turns on. It is the Go analogue of App.
type Supervisor struct {
	cfgPath string
	cfg     *config.Holder

	upstream *bus.Bus[*event.Batch]
	internal *bus.Bus[*event.Batch]
	sys      *bus.Bus[event.SysMessage]

	detections rules.Collection

	ingestSvc *ingest.Service
	worker    *detection.Worker
	backend   *storage.Backend
	fwd       *forwarder.Client

	wg sync.WaitGroup
}

// New builds a Supervisor from cfg, loading detection rules synchronously
// so invalid rules fail startup fast, and wiring only the components the
// config actually enables.
func New(cfgPath string, cfg *config.Config) (*Supervisor, error) {
	s := &Supervisor{
		cfgPath:  cfgPath,
		cfg:      config.NewHolder(cfg),
		upstream: bus.New[*event.Batch](upstreamCapacity),
		internal: bus.New[*event.Batch](internalCapacity),
		sys:      bus.New[event.SysMessage](sysCapacity),
	}

	s.detections = rules.NewMemCollection()
	if len(cfg.Detections) == 0 {
		log.Logger.Warn().Msg("no detection rules loaded")
	} else {
		count := 0
		for _, dir := range cfg.Detections {
			before := len(s.detections.List())
			if err := rules.LoadDir(dir, s.detections); err != nil {
				return nil, fmt.Errorf("%w: loading detections from %s: %v", errs.ErrFatalInit, dir, err)
			}
			count += len(s.detections.List()) - before
		}
		log.Logger.Info().Int("count", count).Msg("loaded detections")
	}

	s.ingestSvc = ingest.NewService(s.upstream)

	if len(s.detections.List()) > 0 {
		s.worker = detection.NewWorker(s.upstream.Subscribe(), s.internal, s.detections)
	}

	if cfg.Storage.Enabled {
		backend, err := storage.NewBackend(cfg.Storage.SchemaDir, cfg.Storage.BaseDir)
		if err != nil {
			return nil, err
		}
		s.backend = backend
	}

	if cfg.Output.Enabled {
		s.fwd = forwarder.NewClient(cfg.Output.Target.Addr(), s.internal.Subscribe(), s.sys.Subscribe())
	}

	return s, nil
}

// Config returns the currently active config snapshot.
func (s *Supervisor) Config() *config.Config {
	return s.cfg.Load()
}

// Run starts every wired component and blocks until ctx is canceled,
// fanning the cancellation out to each component's own goroutine.
func (s *Supervisor) Run(ctx context.Context) error {
	cfg := s.cfg.Load()

	if s.backend != nil {
		s.backend.Run()
		defer s.backend.Stop()
		s.spawn(func() { s.drainToStorage(ctx, s.upstream, s.upstream.Subscribe()) })
		s.spawn(func() { s.drainToStorage(ctx, s.internal, s.internal.Subscribe()) })
	}

	if s.worker != nil {
		s.spawn(func() { s.worker.Run(ctx) })
	}

	if s.fwd != nil {
		s.spawn(func() { s.fwd.Run(ctx) })
	}

	s.spawn(func() { s.watchSys(ctx) })

	if cfg.Input.Addr() != "" {
		log.Logger.Info().Str("addr", cfg.Input.Addr()).Msg("starting ingest server")
		if err := s.ingestSvc.Serve(ctx, cfg.Input.Addr()); err != nil {
			return fmt.Errorf("%w: ingest server: %v", errs.ErrFatalInit, err)
		}
	} else {
		<-ctx.Done()
	}

	s.wg.Wait()
	return nil
}

// drainToStorage writes every batch received on sub to the columnar
// backend until ctx is canceled or the bus closes. Both the upstream
// (raw, OCSF-normalized) bus and the internal (detection finding) bus
// drain to the same backend this way so raw events and findings land in
// independently queryable, class-partitioned files per §4.5.
func (s *Supervisor) drainToStorage(ctx context.Context, src *bus.Bus[*event.Batch], sub *bus.Subscription[*event.Batch]) {
	defer src.Unsubscribe(sub)
	for {
		batch, lagged, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if lagged != nil {
			log.Logger.Warn().Uint64("dropped_batches", lagged.Count).Msg("storage writer lagged behind its source bus")
			continue
		}
		s.backend.WriteBatch(ctx, batch)
	}
}

// watchSys reacts to control-plane messages: Shutdown ends this loop (the
// other components stop via ctx cancellation), Update persists and
// reloads config, Reload is only ever produced by this method, never
// consumed by it.
func (s *Supervisor) watchSys(ctx context.Context) {
	sub := s.sys.Subscribe()
	defer s.sys.Unsubscribe(sub)
	for {
		msg, lagged, err := sub.Recv(ctx)
		if err != nil {
			return
		}
		if lagged != nil {
			continue
		}
		switch msg.Kind {
		case event.SysShutdown:
			return
		case event.SysUpdate:
			s.applyUpdate(msg.Patch)
		}
	}
}

// applyUpdate persists patch to the on-disk local config file, reloads the
// merged config, and broadcasts Reload so every component re-reads
// whatever of it they cache, exactly app.rs's config_watch sequencing.
func (s *Supervisor) applyUpdate(patch map[string]any) {
	newCfg, err := config.ApplyPatch(s.cfgPath, patch)
	if err != nil {
		log.Logger.Error().Err(err).Msg("failed to update config")
		return
	}
	s.cfg.Store(newCfg)
	log.Logger.Info().Msg("config updated")
	s.sys.Publish(event.SysMessage{Kind: event.SysReload})
}

// Update requests a config patch be merged and applied; it is the
// management API's sole write path into the supervisor, per §6's
// Supervisor↔API collaborator contract.
func (s *Supervisor) Update(patch map[string]any) {
	s.sys.Publish(event.SysMessage{Kind: event.SysUpdate, Patch: patch})
}

// Shutdown broadcasts a Shutdown SysMessage to every sys-bus subscriber,
// e.g. forwarder.Client, which reacts by canceling its own derived context.
// The supervisor's own goroutines are expected to stop via ctx
// cancellation from Run's caller; this is the secondary signal path for
// components that only watch the sys bus.
func (s *Supervisor) Shutdown() {
	s.sys.Publish(event.SysMessage{Kind: event.SysShutdown})
}

// Detections exposes the loaded rule collection for the management API
// collaborator.
func (s *Supervisor) Detections() rules.Collection {
	return s.detections
}

// Ready reports whether the supervisor is fit to accept traffic: the rule
// collection must be initialized, and if storage is enabled its routing
// table must have resolved at least one writer. Used by pkg/healthz's
// /readyz handler.
func (s *Supervisor) Ready() (bool, map[string]string) {
	checks := make(map[string]string, 2)
	ready := true

	if s.detections == nil {
		checks["detections"] = "not initialized"
		ready = false
	} else {
		checks["detections"] = "ok"
	}

	if s.backend != nil {
		if s.backend.RouteCount() == 0 {
			checks["storage"] = "no writers resolved"
			ready = false
		} else {
			checks["storage"] = "ok"
		}
	}

	metrics.BusSubscribers.WithLabelValues("upstream").Set(float64(s.upstream.SubscriberCount()))
	metrics.BusSubscribers.WithLabelValues("internal").Set(float64(s.internal.SubscriberCount()))
	metrics.BusSubscribers.WithLabelValues("sys").Set(float64(s.sys.SubscriberCount()))

	return ready, checks
}

func (s *Supervisor) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}
