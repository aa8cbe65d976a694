// Package ingest implements StrIEM's event ingest server: a gRPC endpoint
// upstream log shippers push batches of JSON events to, which are
// published onto the supervisor's upstream bus for the detection worker
// and storage backend to consume independently.
//
// Grounded on this project's upstream Vector gRPC server: events are
// accepted as opaque JSON, filtering decisions (log vs. metric vs. trace)
// happen upstream, and health is reported through the standard gRPC
// health checking protocol rather than a bespoke status RPC.
package ingest
