/*
Package log provides structured logging for StrIEM using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("storage")                 │          │
	│  │  - WithClass("detection_finding")           │          │
	│  │  - WithRuleID("suspicious-login")           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  {"level":"info","ocsf_class":"api_activity",          │
	│  │   "time":"2026-08-01T10:30:00Z",                       │
	│  │   "message":"rotated parquet file"}                    │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Context Loggers

  - WithComponent: tags all logs from a component (ingest, supervisor, ...)
  - WithClass: tags logs from a storage.Writer with the OCSF class it owns,
    so multiple writers' rotation and failure logs can be told apart
  - WithRuleID: tags a detection worker's per-match log line with the rule
    that fired

# Usage

Initializing the logger (done once, in cmd/striemd's root command):

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("supervisor starting")
	log.Warn("no detection rules loaded")
	log.Error("failed to connect to downstream forwarder target")

Structured logging:

	log.Logger.Info().
		Str("addr", cfg.Input.Addr()).
		Msg("starting ingest server")

Context loggers, one per storage.Writer and one per matched rule:

	classLog := log.WithClass("api_activity")
	classLog.Debug().Str("path", finalPath).Int64("rows", rows).Msg("rotated parquet file")

	log.WithRuleID(id).Debug().Str("event_id", e.ID).Msg("rule matched")

# Integration Points

  - pkg/storage: each Writer gets its own WithClass logger for rotation and
    write-failure lines
  - pkg/detection: the worker tags each finding's log line with WithRuleID
  - pkg/supervisor, pkg/ingest, pkg/forwarder: log through the global
    Logger directly, since those components don't multiplex per-entity state
    the way a Writer or a rule match does

# Best Practices

Do:
  - Use Info level in production, Debug only when troubleshooting
  - Use typed fields (.Str, .Int, .Err) instead of string concatenation
  - Create a context logger (WithClass, WithRuleID) wherever a component
    multiplexes state per entity, so its lines stay attributable

Don't:
  - Log event payloads or rule contents verbatim — they may carry
    sensitive data from the upstream log source
  - Log in the per-event hot path (ingest, detection match) above Debug
*/
package log
