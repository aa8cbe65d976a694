// Package event defines the wire-agnostic event shape that flows through
// every StrIEM component: the ingest server decodes into it, the detection
// worker reads and produces it, the columnar writer encodes it.
//
// Events are passed around as *Batch rather than copied per subscriber; the
// bus hands out the same pointer to every subscription, so nothing in this
// package or its callers may mutate an Event or Batch after it has been
// published.
package event
