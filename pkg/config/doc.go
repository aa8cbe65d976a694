// Package config loads and persists StrIEM's daemon configuration.
//
// Layering follows the original Rust config crate's builder: compiled-in
// defaults, then an optional YAML file, then STRIEM_-prefixed environment
// variables, each layer overriding the previous one field by field. The
// active Config is held behind an atomic.Pointer so the supervisor can swap
// it on Reload without readers ever seeing a half-updated value or blocking
// on a lock.
package config
