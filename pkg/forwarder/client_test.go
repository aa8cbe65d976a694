package forwarder

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/striemhq/striem/internal/ingestpb"
	"github.com/striemhq/striem/pkg/bus"
	"github.com/striemhq/striem/pkg/event"
)

type recordingIngestServer struct {
	done chan struct{}
}

func (s *recordingIngestServer) PushEvents(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	select {
	case s.done <- struct{}{}:
	default:
	}
	return &emptypb.Empty{}, nil
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	b := newBackoff()
	d1 := b.next()
	d2 := b.next()
	d3 := b.next()
	assert.Equal(t, 500*time.Millisecond, d1)
	assert.Equal(t, time.Second, d2)
	assert.Equal(t, 2*time.Second, d3)

	for i := 0; i < 10; i++ {
		b.next()
	}
	assert.Equal(t, 30*time.Second, b.next())
}

func TestToStructCarriesMetadata(t *testing.T) {
	batch := &event.Batch{Events: []event.Event{
		event.New(map[string]any{"user": "alice"}, map[string]any{"logsource": "sysmon"}),
	}}
	s, err := toStruct(batch)
	require.NoError(t, err)

	events := s.AsMap()["events"].([]any)
	require.Len(t, events, 1)
	wire := events[0].(map[string]any)
	assert.Equal(t, "alice", wire["user"])
	assert.NotNil(t, wire["__metadata"])
}

func TestClientForwardsBatchToIngestService(t *testing.T) {
	upstream := bus.New[*event.Batch](4)
	svc := &recordingIngestServer{done: make(chan struct{}, 1)}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	ingestpb.RegisterIngestServer(srv, svc)
	go srv.Serve(lis)
	defer srv.Stop()

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }

	sub := upstream.Subscribe()
	c := NewClient("passthrough://bufnet", sub, nil)
	c.dialOptsForTest = []grpc.DialOption{grpc.WithContextDialer(dialer)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	upstream.Publish(&event.Batch{Events: []event.Event{
		event.New(map[string]any{"class_uid": float64(2004)}, nil),
	}})

	select {
	case <-svc.done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for forwarded batch")
	}
}
