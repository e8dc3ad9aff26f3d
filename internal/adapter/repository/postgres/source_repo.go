package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albisri/kasledger/internal/usecase"
)

// SourceRegistry implements usecase.SourceRegistry over the source_records
// table, which mirrors the lifecycle of origin-module records.
type SourceRegistry struct {
	pool *pgxpool.Pool
}

// NewSourceRegistry creates a new SourceRegistry.
func NewSourceRegistry(pool *pgxpool.Pool) *SourceRegistry {
	return &SourceRegistry{pool: pool}
}

func (r *SourceRegistry) q(tx usecase.Transaction) querier {
	if tx == nil {
		return r.pool
	}
	return tx.(*Tx).PgxTx()
}

// Register records that an origin record exists. Re-registration is a no-op.
func (r *SourceRegistry) Register(ctx context.Context, tx usecase.Transaction, module, sourceID string) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO source_records (source_module, source_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (source_module, source_id) DO NOTHING`, module, sourceID)

	return err
}

// Remove drops an origin record registration.
func (r *SourceRegistry) Remove(ctx context.Context, tx usecase.Transaction, module, sourceID string) error {
	_, err := r.q(tx).Exec(ctx, `
		DELETE FROM source_records
		WHERE source_module = $1 AND source_id = $2`, module, sourceID)

	return err
}

// Exists reports whether an origin record is registered.
func (r *SourceRegistry) Exists(ctx context.Context, module, sourceID string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM source_records
			WHERE source_module = $1 AND source_id = $2
		)`, module, sourceID).Scan(&exists)

	return exists, err
}
