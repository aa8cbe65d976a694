package ingest

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/striemhq/striem/internal/ingestpb"
	"github.com/striemhq/striem/pkg/bus"
	"github.com/striemhq/striem/pkg/errs"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
)

// Service implements ingestpb.IngestServer, publishing every pushed batch
// onto an upstream bus.Bus[*event.Batch].
type Service struct {
	upstream *bus.Bus[*event.Batch]
	health   *health.Server
}

// NewService wires a Service to the bus it publishes onto.
func NewService(upstream *bus.Bus[*event.Batch]) *Service {
	return &Service{
		upstream: upstream,
		health:   health.NewServer(),
	}
}

// PushEvents decodes a structpb-encoded batch and publishes it. Malformed
// events (non-object entries) are rejected outright rather than dropped
// individually, since a shipper sending malformed payloads almost always
// indicates a wire-format mismatch worth failing loudly on.
func (s *Service) PushEvents(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	raw, ok := req.AsMap()["events"]
	if !ok {
		return nil, fmt.Errorf("%w: request has no events field", errs.ErrDecodeFailed)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: events field is not a list", errs.ErrDecodeFailed)
	}

	events := make([]event.Event, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: event %d is not an object", errs.ErrDecodeFailed, i)
		}
		metadata, _ := obj["__metadata"].(map[string]any)
		delete(obj, "__metadata")
		events = append(events, event.New(obj, metadata))
	}

	s.upstream.Publish(&event.Batch{Events: events})
	metrics.EventsIngestedTotal.Add(float64(len(events)))
	log.Logger.Debug().Int("count", len(events)).Msg("published pushed event batch")
	return &emptypb.Empty{}, nil
}

// Serve starts the gRPC server on addr and blocks until ctx is canceled.
func (s *Service) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", errs.ErrFatalInit, addr, err)
	}

	srv := grpc.NewServer()
	ingestpb.RegisterIngestServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(ingestServiceName, healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

const ingestServiceName = "striem.ingest.v1.Ingest"
