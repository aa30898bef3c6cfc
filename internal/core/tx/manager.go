// Package tx abstracts transaction management so domain services can compose
// multi-repository writes without importing the database driver.
package tx

import "context"

// Manager runs a function inside a database transaction.
//
// The reconciliation paths depend on this: an opname approval writes session
// rows, product quantities and ledger entries as one atomic unit.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit when fn
	// returns nil, roll back otherwise. Nested calls join the transaction
	// already carried by ctx instead of opening a new one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transaction support for report builders and
// other pure queries.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction; writes inside fn fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
