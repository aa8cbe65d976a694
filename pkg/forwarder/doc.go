// Package forwarder forwards detection findings to a downstream ingest
// endpoint over gRPC, reconnecting with exponential backoff across
// transient network failures or a restarting downstream collector —
// grounded on this project's upstream Vector client and its
// backoff::ExponentialBackoff-wrapped connect loop.
package forwarder
