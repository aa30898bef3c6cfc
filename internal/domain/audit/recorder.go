// Package audit defines the audit trail contract for state transitions.
package audit

import (
	"context"
	"time"

	"tokopos/internal/core/id"
)

// Entry is one audit trail record.
type Entry struct {
	ID         id.ID
	Entity     string // "stock_opname_session"
	EntityID   id.ID
	Action     string // "submit", "approve", "reject", ...
	ActorID    id.ID
	ActorName  string
	OccurredAt time.Time

	// Payload is an opaque JSON document describing the transition. Large
	// payloads may be compressed by the store.
	Payload []byte
}

// Recorder persists audit entries. Recording is best-effort from the caller's
// point of view: services log a failure and continue.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Noop is a Recorder that drops entries. Used in tests.
type Noop struct{}

func (Noop) Record(ctx context.Context, entry Entry) error { return nil }
