package queries

import (
	"context"
	"errors"

	"merch-api/internal/domain/pricing"
	"merch-api/internal/domain/product"
	"merch-api/internal/infra"
	"merch-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errs.New("user not found")
	ErrProductNotFound     = errs.New("product not found")
	ErrPendingCredits      = errs.New("pending credits must be resolved first")
	ErrInsufficientCredits = errs.New("insufficient credits")
)

// QuoteQueries prices a redemption without side effects. Clients may call it
// any number of times; the redemption command re-derives the same quote
// server-side and never trusts what the client saw here.
type QuoteQueries interface {
	GetQuote(ctx context.Context, userID uuid.UUID, productID string, creditsToUse int64) (*pricing.Quote, error)
}

type quoteQueriesImpl struct {
	users      UserReadStore
	products   product.Source
	calculator *pricing.Calculator
}

func NewQuoteQueries(users UserReadStore, products product.Source, calculator *pricing.Calculator) QuoteQueries {
	return &quoteQueriesImpl{
		users:      users,
		products:   products,
		calculator: calculator,
	}
}

func (q *quoteQueriesImpl) GetQuote(ctx context.Context, userID uuid.UUID, productID string, creditsToUse int64) (*pricing.Quote, error) {
	user, err := q.users.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errs.Wrap(err, "failed to find user")
	}

	if user.PendingCredits > 0 {
		return nil, ErrPendingCredits
	}

	resolved, err := q.products.Resolve(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errs.Wrap(err, "failed to resolve product")
	}

	if creditsToUse > user.Credits {
		return nil, ErrInsufficientCredits
	}

	quote, err := q.calculator.Quote(resolved.Price, creditsToUse)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}
