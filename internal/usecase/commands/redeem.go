package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"merch-api/internal/domain/pricing"
	"merch-api/internal/domain/product"
	"merch-api/internal/domain/redemption"
	reqdto "merch-api/internal/handler/dto/request"
	"merch-api/internal/infra"
	"merch-api/internal/pkg/clock"
	"merch-api/internal/pkg/config"
	"merch-api/internal/pkg/errs"
	"merch-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound            = errs.New("user not found")
	ErrProductNotFound         = errs.New("product not found")
	ErrPendingCredits          = errs.New("pending credits must be resolved first")
	ErrInsufficientCredits     = errs.New("insufficient credits")
	ErrPaymentUnavailable      = errs.New("payment provider unavailable")
	ErrInvalidRedemption       = errs.New("invalid redemption request")
	ErrDuplicateRedemption     = errs.New("duplicate redemption request")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const idempotencyEndpoint = "POST /merch/redeem"

type RedeemResult struct {
	Redemption *queries.RedemptionView
	IsReplayed bool
}

type RedeemCommands interface {
	Redeem(ctx context.Context, req reqdto.RedeemRequest, userID uuid.UUID, idempotencyKey uuid.UUID) (*RedeemResult, error)
}

type redeemUseCaseImpl struct {
	userRepo          UserRepository
	redemptionRepo    RedemptionRepository
	idempotencyRepo   IdempotencyRepository
	products          product.Source
	calculator        *pricing.Calculator
	payment           PaymentAuthorizer
	currency          string
	redemptionQueries queries.RedemptionQueries
	db                DB
	clock             clock.Clock
}

func NewRedeemCommands(
	userRepo UserRepository,
	redemptionRepo RedemptionRepository,
	idempotencyRepo IdempotencyRepository,
	products product.Source,
	calculator *pricing.Calculator,
	payment PaymentAuthorizer,
	cfg config.Config,
	redemptionQueries queries.RedemptionQueries,
	db DB,
	clk clock.Clock,
) RedeemCommands {
	return &redeemUseCaseImpl{
		userRepo:          userRepo,
		redemptionRepo:    redemptionRepo,
		idempotencyRepo:   idempotencyRepo,
		products:          products,
		calculator:        calculator,
		payment:           payment,
		currency:          cfg.Stripe.Currency,
		redemptionQueries: redemptionQueries,
		db:                db,
		clock:             clk,
	}
}

// Redeem executes one end-to-end redemption. Preconditions are validated in
// order with no side effects; the payment authorization happens before the
// transaction that inserts the redemption record and debits credits, so a
// payment failure never touches stored state.
func (r *redeemUseCaseImpl) Redeem(
	ctx context.Context,
	req reqdto.RedeemRequest,
	userID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*RedeemResult, error) {
	requestHash := r.calculateRequestHash(req)
	expiresAt := r.clock.Now().Add(24 * time.Hour)

	existing, err := r.handleIdempotency(ctx, idempotencyKey, userID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &RedeemResult{Redemption: existing, IsReplayed: true}, nil
	}

	view, err := r.executeRedemption(ctx, req, userID, idempotencyKey)
	if err != nil {
		// Free the claimed key so the client can retry with the same one; a
		// stuck `processing` row would otherwise block retries until expiry.
		r.releaseIdempotencyKey(ctx, idempotencyKey, userID)
		return nil, err
	}
	return &RedeemResult{Redemption: view, IsReplayed: false}, nil
}

func (r *redeemUseCaseImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, userID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.RedemptionView, error) {
	claimed, err := r.idempotencyRepo.TryInsert(ctx, idempotencyKey, userID, idempotencyEndpoint, requestHash, expiresAt)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if claimed {
		return nil, nil
	}

	existing, err := r.idempotencyRepo.Get(ctx, idempotencyKey, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	switch existing.Status {
	case "completed":
		if existing.ResultRedemptionID != nil {
			return r.redemptionQueries.GetByID(ctx, *existing.ResultRedemptionID)
		}
		return nil, errs.New("completed request missing result redemption ID")

	case "processing":
		if existing.RequestHash != requestHash {
			return nil, ErrDuplicateRedemption
		}
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (r *redeemUseCaseImpl) executeRedemption(
	ctx context.Context,
	req reqdto.RedeemRequest,
	userID, idempotencyKey uuid.UUID,
) (*queries.RedemptionView, error) {
	userSnap, err := r.userRepo.FindSnapshotByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errs.Wrap(err, "failed to find user")
	}

	if userSnap.PendingCredits > 0 {
		return nil, ErrPendingCredits
	}

	resolved, err := r.products.Resolve(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errs.Wrap(err, "failed to resolve product")
	}
	if !resolved.InStock {
		return nil, ErrProductNotFound
	}

	address, err := req.ShippingAddress.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRedemption)
	}

	// Always re-derive the quote from the current price. The client-submitted
	// cash amount is display-only and never authoritative.
	quote, err := r.calculator.Quote(resolved.Price, req.CreditsToUse)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRedemption)
	}

	// Pre-check against the clamped value so obviously-insufficient requests
	// never reach the payment provider. The conditional debit below is the
	// authoritative guard under concurrency.
	if quote.CreditsApplied > userSnap.Credits {
		return nil, ErrInsufficientCredits
	}

	authorization, err := r.payment.Authorize(ctx, quote.TotalMinorUnits(), r.currency, PaymentMetadata{
		UserID:         userID,
		ProductID:      req.ProductID,
		CreditsApplied: quote.CreditsApplied,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentUnavailable)
	}

	entity, err := redemption.NewRedemption(
		userID,
		req.ProductID,
		quote.CreditsApplied,
		quote.CashAmount,
		quote.Total,
		authorization.ID,
		redemption.StatusPending,
		address,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRedemption)
	}

	return r.executeRedemptionTransaction(ctx, entity, idempotencyKey, userID)
}

func (r *redeemUseCaseImpl) executeRedemptionTransaction(
	ctx context.Context,
	entity *redemption.Redemption,
	idempotencyKey, userID uuid.UUID,
) (*queries.RedemptionView, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "error", rollbackErr)
		}
	}()

	if err := r.userRepo.DebitCredits(ctx, tx, userID, entity.CreditsUsed()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			// Lost the balance race after payment authorization. Keep the
			// payment reference recoverable instead of dropping it.
			r.recordFailedRedemption(ctx, entity)
			return nil, ErrInsufficientCredits
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	redemptionID, err := r.redemptionRepo.Create(ctx, tx, entity)
	if err != nil {
		r.recordFailedRedemption(ctx, entity)
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	responseHash := r.calculateIDHash(redemptionID)
	if err := r.idempotencyRepo.UpdateStatusCompleted(ctx, tx, idempotencyKey, userID, responseHash, redemptionID); err != nil {
		r.recordFailedRedemption(ctx, entity)
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := tx.Commit(ctx); err != nil {
		r.recordFailedRedemption(ctx, entity)
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Read-after-write: return the stored view.
	view, err := r.redemptionQueries.GetByID(ctx, redemptionID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

// recordFailedRedemption writes a compensating `failed` record outside the
// failed transaction so a created payment intent is never silently lost.
// Best effort: reconciliation picks it up; a write failure here is logged.
func (r *redeemUseCaseImpl) recordFailedRedemption(ctx context.Context, entity *redemption.Redemption) {
	entity.MarkFailed()
	if _, err := r.redemptionRepo.Create(ctx, r.db, entity); err != nil {
		slog.Error("failed to record compensating redemption",
			"payment_reference", entity.PaymentReference(),
			"user_id", entity.UserID(),
			"error", err.Error())
	}
}

// releaseIdempotencyKey is best effort; the repository only deletes keys still
// in `processing`, so a completed key is never released.
func (r *redeemUseCaseImpl) releaseIdempotencyKey(ctx context.Context, key, userID uuid.UUID) {
	if err := r.idempotencyRepo.Release(ctx, key, userID); err != nil {
		slog.Warn("failed to release idempotency key",
			"key", key,
			"user_id", userID,
			"error", err.Error())
	}
}

func (r *redeemUseCaseImpl) calculateRequestHash(req reqdto.RedeemRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *redeemUseCaseImpl) calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
