package commands

import (
	"context"

	"github.com/google/uuid"

	"merch-api/internal/domain/product"
	reqdto "merch-api/internal/handler/dto/request"
	"merch-api/internal/infra"
	"merch-api/internal/infra/db"
	"merch-api/internal/pkg/errs"
)

var (
	ErrInvalidProduct   = errs.New("invalid product")
	ErrDuplicateProduct = errs.New("product already exists")
	ErrInvalidLaneState = errs.New("invalid lane state")
	ErrLaneNotFound     = errs.New("lane not found")
)

var validLaneStates = map[string]struct{}{
	"ok":        {},
	"watchlist": {},
	"save":      {},
	"archive":   {},
}

type CatalogAdminCommands interface {
	CreateProduct(ctx context.Context, req reqdto.ProductRequest) (string, error)
	UpdateProduct(ctx context.Context, id string, req reqdto.ProductRequest) error
	DeleteProduct(ctx context.Context, id string) error
	UpdateLaneState(ctx context.Context, laneID uuid.UUID, state string) error
}

type catalogAdminCommandsImpl struct {
	productRepo ProductRepository
	laneRepo    LaneRepository
	db          db.DBTX
}

func NewCatalogAdminCommands(productRepo ProductRepository, laneRepo LaneRepository, db db.DBTX) CatalogAdminCommands {
	return &catalogAdminCommandsImpl{
		productRepo: productRepo,
		laneRepo:    laneRepo,
		db:          db,
	}
}

func (c *catalogAdminCommandsImpl) CreateProduct(ctx context.Context, req reqdto.ProductRequest) (string, error) {
	entity, err := req.ToDomain()
	if err != nil {
		return "", errs.Mark(err, ErrInvalidProduct)
	}

	id, err := c.productRepo.Create(ctx, c.db, entity)
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return "", ErrDuplicateProduct
		}
		return "", errs.Wrap(err, "failed to create product")
	}
	return id, nil
}

func (c *catalogAdminCommandsImpl) UpdateProduct(ctx context.Context, id string, req reqdto.ProductRequest) error {
	entity, err := req.ToDomain()
	if err != nil {
		return errs.Mark(err, ErrInvalidProduct)
	}
	entity.ID = id

	if err := c.productRepo.Update(ctx, c.db, entity); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(product.ErrNotFound, ErrProductNotFound)
		}
		return errs.Wrap(err, "failed to update product")
	}
	return nil
}

func (c *catalogAdminCommandsImpl) DeleteProduct(ctx context.Context, id string) error {
	if err := c.productRepo.Delete(ctx, c.db, id); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrProductNotFound
		}
		return errs.Wrap(err, "failed to delete product")
	}
	return nil
}

func (c *catalogAdminCommandsImpl) UpdateLaneState(ctx context.Context, laneID uuid.UUID, state string) error {
	if _, ok := validLaneStates[state]; !ok {
		return ErrInvalidLaneState
	}

	if err := c.laneRepo.UpdateState(ctx, c.db, laneID, state); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrLaneNotFound
		}
		return errs.Wrap(err, "failed to update lane state")
	}
	return nil
}
