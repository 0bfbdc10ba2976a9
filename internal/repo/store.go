// Package repo contains all persistence logic for the journey log.
// A Store keeps one named collection of Identifiable records; a SettingsRepo
// keeps string settings under named keys. Each has memory, Postgres and Redis
// implementations. No business logic lives here, only storage and encoding.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/journeylog/internal/domain"
)

// maxUpdateAttempts bounds the optimistic retry loops of the Postgres and
// Redis stores before an update gives up with domain.ErrConflict.
const maxUpdateAttempts = 5

// Store is a keyed collection of records of type T.
// The service layer depends on this interface, not on a concrete backend,
// which allows the service to be unit-tested against the memory store or a mock.
type Store[T domain.Identifiable] interface {
	// GetAll returns every record in insertion order. An empty collection
	// yields an empty, non-nil slice.
	GetAll(ctx context.Context) ([]T, error)

	// Get returns the first record, in insertion order, for which match
	// returns true. Returns domain.ErrNotFound if nothing matches.
	Get(ctx context.Context, match func(T) bool) (T, error)

	// GetByID returns the record with the given identifier.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (T, error)

	// Insert appends a record. Returns domain.ErrConflict if a record with the
	// same identifier already exists.
	Insert(ctx context.Context, rec T) error

	// InsertAll appends records in order. Either all are written or none.
	InsertAll(ctx context.Context, recs []T) error

	// Edit replaces the record with the given identifier.
	// Returns domain.ErrNotFound, and writes nothing, if it does not exist.
	Edit(ctx context.Context, id int64, rec T) error

	// Delete removes the record with the given identifier. Deleting an absent
	// record succeeds.
	Delete(ctx context.Context, id int64) error

	// Update atomically replaces the record with fn's result. If fn returns an
	// error nothing is written and the error is returned unchanged.
	// Returns domain.ErrNotFound if the record does not exist.
	Update(ctx context.Context, id int64, fn func(T) (T, error)) (T, error)

	// NextID returns a fresh identifier for this collection. Identifiers are
	// strictly increasing and never handed out twice.
	NextID(ctx context.Context) (int64, error)
}

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, pgx.Tx
// and pgxmock pools. Accepting it instead of *pgxpool.Pool lets integration
// tests pass a transaction that is rolled back after each test, and unit
// tests pass a mock.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// encode serializes a record for storage.
func encode[T any](rec T) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

// decode deserializes a stored record.
func decode[T any](b []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// checkID rejects a replacement record whose identifier differs from the key
// it is written under.
func checkID[T domain.Identifiable](id int64, rec T) error {
	if got := rec.Identifier(); got != id {
		return fmt.Errorf("%w: record id %d does not match key %d", domain.ErrValidation, got, id)
	}
	return nil
}

// checkUnique rejects a batch that repeats an identifier.
func checkUnique[T domain.Identifiable](recs []T) error {
	seen := make(map[int64]struct{}, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.Identifier()]; dup {
			return fmt.Errorf("%w: duplicate id %d in batch", domain.ErrConflict, r.Identifier())
		}
		seen[r.Identifier()] = struct{}{}
	}
	return nil
}

// first returns the first record in recs matching fn.
func first[T any](recs []T, match func(T) bool) (T, error) {
	for _, r := range recs {
		if match(r) {
			return r, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}
