// Package ingestpb defines the wire contract for StrIEM's event ingest
// service: a single unary RPC, PushEvents, that accepts a batch of
// already-JSON-shaped events from an upstream log shipper.
//
// Rather than compiling a .proto file through protoc (out of scope for
// this build), the request and response messages reuse the well-known
// protobuf types that ship compiled into google.golang.org/protobuf:
// structpb.Struct carries the arbitrary, schema-less event payloads and
// emptypb.Empty acknowledges the push. The grpc.ServiceDesc below is the
// same hand-writable wiring protoc-gen-go-grpc would otherwise emit.
package ingestpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "striem.ingest.v1.Ingest"

// IngestServer is implemented by pkg/ingest.Service.
type IngestServer interface {
	PushEvents(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// IngestClient is implemented by pkg/forwarder.Client.
type IngestClient interface {
	PushEvents(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type ingestClient struct {
	cc grpc.ClientConnInterface
}

// NewIngestClient returns a client bound to an existing connection.
func NewIngestClient(cc grpc.ClientConnInterface) IngestClient {
	return &ingestClient{cc: cc}
}

func (c *ingestClient) PushEvents(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/PushEvents", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func pushEventsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IngestServer).PushEvents(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/PushEvents",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IngestServer).PushEvents(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would generate
// from a PushEvents(Struct) returns (Empty) RPC definition.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IngestServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushEvents",
			Handler:    pushEventsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "striem/ingest.proto",
}

// RegisterIngestServer registers impl with s.
func RegisterIngestServer(s grpc.ServiceRegistrar, impl IngestServer) {
	s.RegisterService(&ServiceDesc, impl)
}
