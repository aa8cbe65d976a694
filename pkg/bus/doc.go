// Package bus implements a generic, multi-subscriber broadcast primitive.
//
// It generalizes the publish/subscribe shape used elsewhere in this
// codebase (one broadcast goroutine, a registry of subscriber channels
// guarded by a RWMutex, explicit Start/Stop) to two properties the simple
// broadcast pattern doesn't give you:
//
//   - Every subscriber gets every batch published after it subscribed, in
//     order, with no silent drop: a subscriber that falls behind loses the
//     oldest buffered batches from its own ring, never the newest, and is
//     told how many it lost via a Lagged marker instead of nothing at all.
//   - The payload type is a type parameter, so the same implementation
//     backs both the high-volume event-batch buses and the low-volume
//     control-message bus.
//
// A Bus with zero subscribers is a no-op sink: Publish never blocks on the
// absence of a reader.
package bus
