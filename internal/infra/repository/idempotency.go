package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/usecase/commands"
)

type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

var _ commands.IdempotencyRepository = (*IdempotencyRepository)(nil)

// TryInsert claims the key for processing. Expired rows for the same key are
// taken over rather than rejected. RowsAffected distinguishes a fresh claim
// (1) from a live conflicting row (0, the DO UPDATE guard did not fire).
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	const query = `
		INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, 'processing', $5, now())
		ON CONFLICT (key, user_id) DO UPDATE
		SET endpoint = EXCLUDED.endpoint,
		    request_hash = EXCLUDED.request_hash,
		    status = 'processing',
		    result_redemption_id = NULL,
		    response_body_hash = NULL,
		    expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= now()`

	tag, err := r.pool.Exec(ctx, query, key, userID, endpoint, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*commands.IdempotencyRecord, error) {
	const query = `
		SELECT key, user_id, status, request_hash, result_redemption_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2`

	var rec commands.IdempotencyRecord
	err := r.pool.QueryRow(ctx, query, key, userID).Scan(
		&rec.Key, &rec.UserID, &rec.Status, &rec.RequestHash, &rec.ResultRedemptionID, &rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultRedemptionID uuid.UUID) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'completed', response_body_hash = $3, result_redemption_id = $4
		WHERE key = $1 AND user_id = $2`

	tag, err := dbtx.Exec(ctx, query, key, userID, responseBodyHash, resultRedemptionID)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}

// Release frees a key abandoned mid-processing so the same key can be retried.
// The status guard keeps completed keys (and their replay results) intact.
func (r *IdempotencyRepository) Release(ctx context.Context, key, userID uuid.UUID) error {
	const query = `
		DELETE FROM idempotency_keys
		WHERE key = $1 AND user_id = $2 AND status = 'processing'`

	if _, err := r.pool.Exec(ctx, query, key, userID); err != nil {
		return infra.WrapRepoErr("failed to release idempotency key", err)
	}
	return nil
}

// DeleteExpired is called periodically from the bootstrap cleanup loop.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= now() AND status <> 'processing'`)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
