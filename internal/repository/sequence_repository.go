package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// SequenceRepository hands out order numbers. Next must be safe under
// concurrent callers: two orders of the same kind in the same year can never
// receive the same sequence value.
type SequenceRepository interface {
	Next(ctx context.Context, kind domain.OrderKind, year int) (int64, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates the repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

func (r *sequenceRepository) Next(ctx context.Context, kind domain.OrderKind, year int) (int64, error) {
	// Single-statement upsert increment; row-level locking makes it atomic.
	const query = `
        INSERT INTO order_sequences (kind, year, value)
        VALUES ($1, $2, 1)
        ON CONFLICT (kind, year)
        DO UPDATE SET value = order_sequences.value + 1
        RETURNING value`

	var value int64
	if err := r.pool.QueryRow(ctx, query, kind, year).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
