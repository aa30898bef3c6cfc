// Package notify defines the notification fan-out consumed by the opname
// workflow. Delivery is best-effort: implementations log failures and never
// propagate them, so a missed notification can never roll back a state
// transition.
package notify

import (
	"context"

	"tokopos/internal/core/id"
)

// Event identifies an opname session state transition.
type Event string

const (
	EventOpnameSubmitted Event = "opname_submitted"
	EventOpnameApproved  Event = "opname_approved"
	EventOpnameRejected  Event = "opname_rejected"
)

// OpnameNotification carries everything an implementation needs to fan the
// event out to the admin users of the session's tenant.
type OpnameNotification struct {
	Event       Event
	SessionID   id.ID
	SessionCode string
	BranchID    id.ID
	ActorID     id.ID
	ActorName   string
	Reason      string // rejection reason, empty otherwise
}

// Notifier fans out opname events to all admin users of the branch's tenant.
type Notifier interface {
	NotifyOpname(ctx context.Context, n OpnameNotification)
}

// Noop is a Notifier that does nothing. Used in tests and the worker.
type Noop struct{}

func (Noop) NotifyOpname(ctx context.Context, n OpnameNotification) {}
