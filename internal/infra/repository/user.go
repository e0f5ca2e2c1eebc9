package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"merch-api/internal/domain/user"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/usecase/commands"
	"merch-api/internal/usecase/queries"
)

const pgUniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ commands.UserRepository = (*UserRepository)(nil)
var _ queries.UserReadStore = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*queries.UserProfileView, error) {
	const query = `
		SELECT id, email, role, first_name, last_name, credits, pending_credits,
		       redemption_count, is_active, last_login, created_at
		FROM users
		WHERE id = $1`

	var v queries.UserProfileView
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.Email, &v.Role, &v.FirstName, &v.LastName, &v.Credits,
		&v.PendingCredits, &v.RedemptionCount, &v.IsActive, &v.LastLogin, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &v, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*queries.UserProfileView, error) {
	const query = `
		SELECT id, email, role, first_name, last_name, credits, pending_credits,
		       redemption_count, is_active, last_login, created_at
		FROM users
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list users", err)
	}
	defer rows.Close()

	var views []*queries.UserProfileView
	for rows.Next() {
		var v queries.UserProfileView
		if err := rows.Scan(
			&v.ID, &v.Email, &v.Role, &v.FirstName, &v.LastName, &v.Credits,
			&v.PendingCredits, &v.RedemptionCount, &v.IsActive, &v.LastLogin, &v.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan user", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate users", err)
	}
	return views, nil
}

func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count users", err)
	}
	return count, nil
}

func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE last_login IS NOT NULL AND last_login >= $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active users", err)
	}
	return count, nil
}

func (r *UserRepository) SumStats(ctx context.Context, since *time.Time) (queries.MetricsView, error) {
	const query = `
		SELECT COALESCE(SUM(stat_bursts), 0), COALESCE(SUM(stat_wins), 0),
		       COALESCE(SUM(stat_purchases), 0), COALESCE(SUM(stat_referrals), 0)
		FROM users
		WHERE $1::timestamptz IS NULL OR created_at >= $1`

	var v queries.MetricsView
	err := r.pool.QueryRow(ctx, query, since).Scan(&v.Bursts, &v.Wins, &v.Purchases, &v.Referrals)
	if err != nil {
		return queries.MetricsView{}, infra.WrapRepoErr("failed to sum user stats", err)
	}
	return v, nil
}

// Write side

func (r *UserRepository) FindSnapshotByID(ctx context.Context, id uuid.UUID) (*commands.UserSnapshot, error) {
	const query = `
		SELECT id, email, role, credits, pending_credits, is_active
		FROM users
		WHERE id = $1`

	var s commands.UserSnapshot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Email, &s.Role, &s.Credits, &s.PendingCredits, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &s, nil
}

func (r *UserRepository) FindSnapshotByEmail(ctx context.Context, email string) (*commands.UserSnapshot, string, error) {
	const query = `
		SELECT id, email, role, credits, pending_credits, is_active, password_hash
		FROM users
		WHERE email = $1`

	var s commands.UserSnapshot
	var hash string
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.ID, &s.Email, &s.Role, &s.Credits, &s.PendingCredits, &s.IsActive, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user", err)
	}
	return &s, hash, nil
}

func (r *UserRepository) Create(ctx context.Context, dbtx db.DBTX, u *user.User) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name,
		                   credits, pending_credits, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id`

	var id uuid.UUID
	err := dbtx.QueryRow(ctx, query,
		u.ID(), u.Email().Value(), u.PasswordHash(), u.Role().String(),
		u.FirstName(), u.LastName(), u.Credits(), u.PendingCredits(), u.IsActive(),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return uuid.Nil, infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error {
	const query = `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}

// DebitCredits is the authoritative balance guard. The WHERE clause makes the
// debit conditional on the current balance, so two concurrent redemptions
// cannot both succeed against the same credits.
func (r *UserRepository) DebitCredits(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, credits int64) error {
	const query = `
		UPDATE users
		SET credits = credits - $2,
		    redemption_count = redemption_count + 1,
		    updated_at = now()
		WHERE id = $1 AND credits >= $2`

	tag, err := dbtx.Exec(ctx, query, userID, credits)
	if err != nil {
		return infra.WrapRepoErr("failed to debit credits", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("insufficient credits", nil, infra.KindConflict)
	}
	return nil
}
