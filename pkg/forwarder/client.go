package forwarder

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/striemhq/striem/internal/ingestpb"
	"github.com/striemhq/striem/pkg/bus"
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/log"
	"github.com/striemhq/striem/pkg/metrics"
)

// Client forwards every batch received from an internal findings bus to a
// downstream ingest endpoint, reconnecting with exponential backoff when
// the connection drops or never came up.
type Client struct {
	addr string
	src  *bus.Subscription[*event.Batch]
	sys  *bus.Subscription[event.SysMessage]

	// dialOptsForTest overrides the dialer used by connect; only ever set
	// by tests wiring an in-memory bufconn listener in place of a real
	// network connection.
	dialOptsForTest []grpc.DialOption
}

// NewClient wires a Client forwarding from src to addr, honoring shutdown
// signals observed on sys.
func NewClient(addr string, src *bus.Subscription[*event.Batch], sys *bus.Subscription[event.SysMessage]) *Client {
	return &Client{addr: addr, src: src, sys: sys}
}

// Run connects to addr and forwards batches until ctx is canceled, the
// source bus closes, or a shutdown SysMessage arrives. Connection failures
// retry indefinitely with exponential backoff rather than giving up.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.sys != nil {
		go c.watchSys(ctx, cancel)
	}

	b := newBackoff()
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := b.next()
			log.Logger.Warn().Err(err).Dur("retry_in", delay).Str("addr", c.addr).Msg("failed to connect to downstream forwarder target")
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return
			}
		}
		metrics.ForwarderReconnectsTotal.Inc()
		b.reset()
		log.Logger.Info().Str("addr", c.addr).Msg("connected to downstream forwarder target")

		if c.forward(ctx, conn) {
			conn.Close()
			return
		}
		conn.Close()
	}
}

// watchSys cancels ctx as soon as a shutdown SysMessage is observed, so
// the forward loop's blocking Recv on the data bus unblocks immediately.
func (c *Client) watchSys(ctx context.Context, cancel context.CancelFunc) {
	for {
		msg, lagged, err := c.sys.Recv(ctx)
		if err != nil {
			return
		}
		if lagged != nil {
			continue
		}
		if msg.Kind == event.SysShutdown {
			log.Logger.Info().Msg("forwarder received shutdown signal")
			cancel()
			return
		}
	}
}

func (c *Client) connect(ctx context.Context) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	opts = append(opts, c.dialOptsForTest...)
	conn, err := grpc.NewClient(c.addr, opts...)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// forward drains the source bus onto conn until told to stop. It returns
// true when the caller should give up entirely (shutdown or source
// closed), false when it should reconnect and keep trying.
func (c *Client) forward(ctx context.Context, conn *grpc.ClientConn) bool {
	client := ingestpb.NewIngestClient(conn)

	for {
		select {
		case <-ctx.Done():
			return true
		default:
		}

		batch, lagged, err := c.src.Recv(ctx)
		if err != nil {
			return true
		}
		if lagged != nil {
			metrics.BusDropsTotal.WithLabelValues("internal").Add(float64(lagged.Count))
			log.Logger.Warn().Uint64("dropped_batches", lagged.Count).Msg("forwarder lagged behind internal bus")
			continue
		}
		if len(batch.Events) == 0 {
			continue
		}

		req, err := toStruct(batch)
		if err != nil {
			log.Logger.Error().Err(err).Msg("failed to encode batch for forwarding")
			continue
		}
		if _, err := client.PushEvents(ctx, req); err != nil {
			log.Logger.Warn().Err(err).Msg("failed to push batch downstream, reconnecting")
			return false
		}
	}
}

func toStruct(batch *event.Batch) (*structpb.Struct, error) {
	events := make([]any, 0, len(batch.Events))
	for _, e := range batch.Events {
		obj, ok := e.Data.(map[string]any)
		if !ok {
			continue
		}
		wire := make(map[string]any, len(obj)+1)
		for k, v := range obj {
			wire[k] = v
		}
		if len(e.Metadata) > 0 {
			wire["__metadata"] = e.Metadata
		}
		events = append(events, wire)
	}
	return structpb.NewStruct(map[string]any{"events": events})
}
