// Package metrics exposes StrIEM's Prometheus instrumentation: bus
// subscriber/drop counts, ingest volume, conversion and write failures,
// rotation outcomes, detection match latency and finding counts, and
// forwarder reconnects. Every metric is registered at package init, and
// served on /metrics by pkg/healthz's HTTP server via Handler().
package metrics
