package reports

import (
	"context"
)

// CacheRepository persists generated reports keyed by their natural period
// key. Upserts are idempotent: regenerating a period overwrites the cached
// row.
type CacheRepository interface {
	UpsertMovement(ctx context.Context, report *StockMovement) error
	GetMovement(ctx context.Context, key MovementKey) (*StockMovement, error)

	UpsertMutation(ctx context.Context, report *StockMutation) error
	GetMutation(ctx context.Context, key MutationKey) (*StockMutation, error)
}
