package event

import "github.com/google/uuid"

// Event is the decoded form of one security log record, together with the
// sideband metadata the ingest path or the detection worker attaches to it
// (logsource, correlation ids, OCSF markers).
type Event struct {
	ID       string
	Data     any
	Metadata map[string]any
}

// New wraps data and metadata into an Event, minting a fresh time-ordered
// id. The source's own identifier, if any, belongs in Metadata under
// "correlation_uid" — it is never reused as ID.
func New(data any, metadata map[string]any) Event {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return Event{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Data:     data,
		Metadata: metadata,
	}
}

// Batch is the unit of transport on the bus: one upstream push, one
// detection pass, one write attempt.
type Batch struct {
	Events []Event
}

// SysKind enumerates the control messages the supervisor broadcasts to
// every long-lived component.
type SysKind int

const (
	SysShutdown SysKind = iota
	SysReload
	SysUpdate
)

// SysMessage is broadcast on a dedicated, small bus; every component that
// needs to react to lifecycle changes subscribes to it independently of the
// event buses.
type SysMessage struct {
	Kind  SysKind
	Patch map[string]any // only set when Kind == SysUpdate
}
