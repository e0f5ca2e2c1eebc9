package queries

import (
	"context"

	"merch-api/internal/infra"
	"merch-api/internal/pkg/errs"

	"github.com/google/uuid"
)

type UserQueries interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserProfileView, error)
}

type userQueriesImpl struct {
	users UserReadStore
}

func NewUserQueries(users UserReadStore) UserQueries {
	return &userQueriesImpl{users: users}
}

func (q *userQueriesImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserProfileView, error) {
	user, err := q.users.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errs.Wrap(err, "failed to find user")
	}
	return user, nil
}
