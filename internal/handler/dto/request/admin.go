package request

import (
	"merch-api/internal/domain/product"

	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Image       string          `json:"image"`
	InStock     bool            `json:"inStock"`
	Inventory   int32           `json:"inventory" binding:"gte=0"`
}

func (r ProductRequest) ToDomain() (*product.Product, error) {
	category, err := product.NewCategory(r.Category)
	if err != nil {
		return nil, err
	}

	entity := &product.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    category,
		Image:       r.Image,
		InStock:     r.InStock,
		Inventory:   r.Inventory,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	return entity, nil
}

type LaneStateRequest struct {
	State string `json:"state" binding:"required"`
}
