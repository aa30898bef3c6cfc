// Package id provides UUIDv7 identifiers for every persisted entity.
package id

import "github.com/google/uuid"

// ID aliases uuid.UUID so callers never import the uuid package directly.
type ID = uuid.UUID

// New returns a UUIDv7. The embedded Unix timestamp gives ledger rows and
// opname sessions chronological ordering and good B-tree locality in
// PostgreSQL without a separate sort index.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to V4
		// rather than returning an unusable zero id.
		return uuid.New()
	}
	return v7
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// Nil returns the zero-value ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
