package queries

import (
	"context"

	"merch-api/internal/infra"
	"merch-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrRedemptionNotFound = errs.New("redemption not found")

type RedemptionQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RedemptionView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*RedemptionView, error)
}

type redemptionQueriesImpl struct {
	redemptions RedemptionReadStore
}

func NewRedemptionQueries(redemptions RedemptionReadStore) RedemptionQueries {
	return &redemptionQueriesImpl{redemptions: redemptions}
}

func (q *redemptionQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*RedemptionView, error) {
	view, err := q.redemptions.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, errs.Wrap(err, "failed to find redemption")
	}
	return view, nil
}

func (q *redemptionQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*RedemptionView, error) {
	views, err := q.redemptions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list redemptions")
	}
	return views, nil
}
