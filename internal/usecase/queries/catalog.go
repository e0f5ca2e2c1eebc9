package queries

import (
	"context"

	"merch-api/internal/domain/product"
	"merch-api/internal/pkg/errs"
)

// CatalogQueries serves the public storefront listing through the product
// source chain, so an unseeded database still returns the demo catalog.
type CatalogQueries interface {
	ListCatalog(ctx context.Context) ([]*ProductView, error)
}

type catalogQueriesImpl struct {
	products product.Source
}

func NewCatalogQueries(products product.Source) CatalogQueries {
	return &catalogQueriesImpl{products: products}
}

func (q *catalogQueriesImpl) ListCatalog(ctx context.Context) ([]*ProductView, error) {
	all, err := q.products.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list catalog")
	}

	views := make([]*ProductView, 0, len(all))
	for i := range all {
		if !all[i].InStock {
			continue
		}
		views = append(views, FromProduct(&all[i]))
	}
	return views, nil
}

func FromProduct(p *product.Product) *ProductView {
	return &ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category.String(),
		Image:       p.Image,
		InStock:     p.InStock,
		Inventory:   p.Inventory,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
