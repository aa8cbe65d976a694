// Package supervisor wires the ingest server, detection worker, storage
// backend, and forwarder client together onto a shared pair of event buses,
// and owns the control-plane bus (Shutdown/Reload/Update) every long-lived
// component subscribes to independently.
//
// Grounded on this project's own App struct: one upstream bus for raw
// ingested batches, one internal bus for detection findings, and a ring-
// size-1 broadcast for SysMessage where losing an intermediate Reload to an
// overflow drop is harmless because the next Reload still carries the
// current config.
package supervisor
