package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/journeylog/internal/domain"
)

const pgUniqueViolation = "23505"

// pgStore is the Postgres implementation of Store.
// All collections share the records table; the collection column keeps them apart.
// Each row carries a version that Update uses for compare-and-swap.
type pgStore[T domain.Identifiable] struct {
	db         db
	collection string
}

// NewPostgresStore constructs a Store for the named collection backed by the
// provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresStore[T domain.Identifiable](db db, collection string) Store[T] {
	return &pgStore[T]{db: db, collection: collection}
}

func (r *pgStore[T]) GetAll(ctx context.Context) ([]T, error) {
	const q = `SELECT body FROM records WHERE collection = $1 ORDER BY seq`

	rows, err := r.db.Query(ctx, q, r.collection)
	if err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.GetAll: %w", err)
	}
	defer rows.Close()

	// Initialise to empty slice so callers always get [] not nil.
	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("repo.PostgresStore.GetAll scan: %w", err)
		}
		rec, err := decode[T](body)
		if err != nil {
			return nil, fmt.Errorf("repo.PostgresStore.GetAll: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PostgresStore.GetAll rows: %w", err)
	}
	return out, nil
}

func (r *pgStore[T]) Get(ctx context.Context, match func(T) bool) (T, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	rec, err := first(all, match)
	if err != nil {
		return rec, fmt.Errorf("repo.PostgresStore.Get: %w", err)
	}
	return rec, nil
}

func (r *pgStore[T]) GetByID(ctx context.Context, id int64) (T, error) {
	rec, _, err := r.load(ctx, r.db, id)
	if err != nil {
		return rec, fmt.Errorf("repo.PostgresStore.GetByID: %w", err)
	}
	return rec, nil
}

// Insert runs in its own transaction (a savepoint when r.db is already a
// transaction) so a unique violation never poisons an enclosing transaction.
func (r *pgStore[T]) Insert(ctx context.Context, rec T) error {
	if err := r.InsertAll(ctx, []T{rec}); err != nil {
		return fmt.Errorf("repo.PostgresStore.Insert: %w", err)
	}
	return nil
}

// InsertAll writes every record inside one transaction.
func (r *pgStore[T]) InsertAll(ctx context.Context, recs []T) error {
	if err := checkUnique(recs); err != nil {
		return fmt.Errorf("repo.PostgresStore.InsertAll: %w", err)
	}
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := r.insert(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.PostgresStore.InsertAll: %w", err)
	}
	return nil
}

func (r *pgStore[T]) Edit(ctx context.Context, id int64, rec T) error {
	const q = `
		UPDATE records SET body = $3, version = version + 1, updated_at = now()
		WHERE collection = $1 AND id = $2`

	if err := checkID(id, rec); err != nil {
		return fmt.Errorf("repo.PostgresStore.Edit: %w", err)
	}
	body, err := encode(rec)
	if err != nil {
		return fmt.Errorf("repo.PostgresStore.Edit: %w", err)
	}

	tag, err := r.db.Exec(ctx, q, r.collection, id, body)
	if err != nil {
		return fmt.Errorf("repo.PostgresStore.Edit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PostgresStore.Edit: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgStore[T]) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM records WHERE collection = $1 AND id = $2`

	if _, err := r.db.Exec(ctx, q, r.collection, id); err != nil {
		return fmt.Errorf("repo.PostgresStore.Delete: %w", err)
	}
	return nil
}

// Update reads the row with its version, applies fn and writes the result only
// if the version is unchanged. A lost race is retried a bounded number of times.
func (r *pgStore[T]) Update(ctx context.Context, id int64, fn func(T) (T, error)) (T, error) {
	const q = `
		UPDATE records SET body = $3, version = version + 1, updated_at = now()
		WHERE collection = $1 AND id = $2 AND version = $4`

	var zero T
	for range maxUpdateAttempts {
		cur, version, err := r.load(ctx, r.db, id)
		if err != nil {
			return zero, fmt.Errorf("repo.PostgresStore.Update: %w", err)
		}
		next, err := fn(cur)
		if err != nil {
			return zero, err
		}
		if err := checkID(id, next); err != nil {
			return zero, fmt.Errorf("repo.PostgresStore.Update: %w", err)
		}
		body, err := encode(next)
		if err != nil {
			return zero, fmt.Errorf("repo.PostgresStore.Update: %w", err)
		}

		tag, err := r.db.Exec(ctx, q, r.collection, id, body, version)
		if err != nil {
			return zero, fmt.Errorf("repo.PostgresStore.Update: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return next, nil
		}
	}
	return zero, fmt.Errorf("repo.PostgresStore.Update: %w: record %d kept changing", domain.ErrConflict, id)
}

// NextID bumps the per-collection counter in record_sequences.
func (r *pgStore[T]) NextID(ctx context.Context) (int64, error) {
	const q = `
		INSERT INTO record_sequences (collection, last_id) VALUES ($1, 1)
		ON CONFLICT (collection) DO UPDATE SET last_id = record_sequences.last_id + 1
		RETURNING last_id`

	var id int64
	if err := r.db.QueryRow(ctx, q, r.collection).Scan(&id); err != nil {
		return 0, fmt.Errorf("repo.PostgresStore.NextID: %w", err)
	}
	return id, nil
}

func (r *pgStore[T]) load(ctx context.Context, q db, id int64) (T, int64, error) {
	const sel = `SELECT body, version FROM records WHERE collection = $1 AND id = $2`

	var (
		zero    T
		body    []byte
		version int64
	)
	if err := q.QueryRow(ctx, sel, r.collection, id).Scan(&body, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, 0, domain.ErrNotFound
		}
		return zero, 0, err
	}
	rec, err := decode[T](body)
	if err != nil {
		return zero, 0, err
	}
	return rec, version, nil
}

func (r *pgStore[T]) insert(ctx context.Context, q db, rec T) error {
	const ins = `INSERT INTO records (collection, id, body) VALUES ($1, $2, $3)`

	body, err := encode(rec)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, ins, r.collection, rec.Identifier(), body); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: id %d already exists", domain.ErrConflict, rec.Identifier())
		}
		return err
	}
	return nil
}
