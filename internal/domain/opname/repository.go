package opname

import (
	"context"
	"time"

	"tokopos/internal/core/id"
)

// Repository defines persistence for opname sessions and their items.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, sessionID id.ID) (*Session, error)

	// GetForUpdate retrieves the session header with a row lock, serializing
	// concurrent transitions of the same session.
	GetForUpdate(ctx context.Context, sessionID id.ID) (*Session, error)

	// Update persists the session header (status, actors, aggregates).
	Update(ctx context.Context, s *Session) error

	List(ctx context.Context, filter ListFilter) ([]*Session, error)

	GetItems(ctx context.Context, sessionID id.ID) ([]Item, error)
	GetItemByID(ctx context.Context, itemID id.ID) (*Item, error)

	// UpsertItem inserts or overwrites the (session, product) item.
	UpsertItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, sessionID, itemID id.ID) error
}

// ListFilter for filtering sessions. Zero values mean "no filter".
type ListFilter struct {
	BranchID id.ID
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
