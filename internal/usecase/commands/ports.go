package commands

import (
	"context"
	"time"

	"merch-api/internal/domain/product"
	"merch-api/internal/domain/redemption"
	"merch-api/internal/domain/user"
	"merch-api/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB is the write-side database handle. Satisfied by *pgxpool.Pool.
type DB interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Write-side snapshots prevent dependency on read-side query types.

type UserSnapshot struct {
	ID             uuid.UUID
	Email          string
	Role           string
	Credits        int64
	PendingCredits int64
	IsActive       bool
}

type IdempotencyRecord struct {
	Key                uuid.UUID
	UserID             uuid.UUID
	Status             string
	RequestHash        string
	ResultRedemptionID *uuid.UUID
	ExpiresAt          time.Time
}

type UserRepository interface {
	FindSnapshotByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	FindSnapshotByEmail(ctx context.Context, email string) (*UserSnapshot, string, error)
	Create(ctx context.Context, dbtx db.DBTX, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error
	// DebitCredits decrements the balance and bumps the redemption counter in
	// one conditional statement. Returns a CONFLICT repository error when the
	// balance is lower than the debit, so concurrent redemptions cannot
	// overdraw against a stale read.
	DebitCredits(ctx context.Context, dbtx db.DBTX, userID uuid.UUID, credits int64) error
}

type RedemptionRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, r *redemption.Redemption) (uuid.UUID, error)
}

type IdempotencyRepository interface {
	// TryInsert claims the key for processing. claimed is true when this call
	// created the row (or took over an expired one); false means a live row
	// already exists and Get must be consulted.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (claimed bool, err error)
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultRedemptionID uuid.UUID) error
	// Release frees a key still in `processing` so the client can retry after
	// a failed attempt. Completed keys are left untouched.
	Release(ctx context.Context, key, userID uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, p *product.Product) (string, error)
	Update(ctx context.Context, dbtx db.DBTX, p *product.Product) error
	Delete(ctx context.Context, dbtx db.DBTX, id string) error
}

type LaneRepository interface {
	UpdateState(ctx context.Context, dbtx db.DBTX, id uuid.UUID, state string) error
}

// PaymentAuthorizer is the external payment collaborator. Amounts are integer
// minor units of the given currency.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, amountMinorUnits int64, currency string, meta PaymentMetadata) (*PaymentAuthorization, error)
}

type PaymentMetadata struct {
	UserID         uuid.UUID
	ProductID      string
	CreditsApplied int64
}

type PaymentAuthorization struct {
	ID           string
	ClientSecret string
}
