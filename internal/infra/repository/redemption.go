package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"merch-api/internal/domain/redemption"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"
)

type RedemptionRepository struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

var _ commands.RedemptionRepository = (*RedemptionRepository)(nil)
var _ queries.RedemptionReadStore = (*RedemptionRepository)(nil)

const redemptionColumns = `id, user_id, product_id, credits_used, cash_amount, total_amount,
	payment_reference, status, street, city, state, zip_code, country,
	tracking_number, created_at, updated_at`

func (r *RedemptionRepository) Create(ctx context.Context, dbtx db.DBTX, entity *redemption.Redemption) (uuid.UUID, error) {
	const query = `
		INSERT INTO redemptions (id, user_id, product_id, credits_used, cash_amount,
		                         total_amount, payment_reference, status,
		                         street, city, state, zip_code, country,
		                         created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		RETURNING id`

	addr := entity.ShippingAddress()
	var id uuid.UUID
	err := dbtx.QueryRow(ctx, query,
		entity.ID(), entity.UserID(), entity.ProductID(), entity.CreditsUsed(),
		entity.CashAmount(), entity.TotalAmount(), entity.PaymentReference(),
		entity.Status().String(), addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create redemption", err)
	}
	return id, nil
}

func scanRedemption(row pgx.Row) (*queries.RedemptionView, error) {
	var v queries.RedemptionView
	err := row.Scan(
		&v.ID, &v.UserID, &v.ProductID, &v.CreditsUsed, &v.CashAmount, &v.TotalAmount,
		&v.PaymentReference, &v.Status, &v.Street, &v.City, &v.State, &v.ZipCode,
		&v.Country, &v.TrackingNumber, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RedemptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*queries.RedemptionView, error) {
	v, err := scanRedemption(r.pool.QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("redemption not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find redemption", err)
	}
	return v, nil
}

func (r *RedemptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.RedemptionView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list redemptions", err)
	}
	defer rows.Close()

	var views []*queries.RedemptionView
	for rows.Next() {
		v, err := scanRedemption(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan redemption", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate redemptions", err)
	}
	return views, nil
}

func (r *RedemptionRepository) CountSince(ctx context.Context, since *time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM redemptions
		WHERE $1::timestamptz IS NULL OR created_at >= $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count redemptions", err)
	}
	return count, nil
}

func (r *RedemptionRepository) CountByDay(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	const query = `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD'), COUNT(*)
		FROM redemptions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY 1`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count redemptions by day", err)
	}
	defer rows.Close()

	perDay := make(map[string]int64)
	for rows.Next() {
		var day string
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan redemption count", err)
		}
		perDay[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate redemption counts", err)
	}
	return perDay, nil
}
