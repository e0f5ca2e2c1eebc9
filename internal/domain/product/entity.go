package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
	ErrNegativePrice   = errors.New("price cannot be negative")
)

type Category string

const (
	CategoryApparel     Category = "Apparel"
	CategoryDrinkware   Category = "Drinkware"
	CategoryStationery  Category = "Stationery"
	CategoryAccessories Category = "Accessories"
	CategoryBags        Category = "Bags"
	CategoryElectronics Category = "Electronics"
)

func NewCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryApparel, CategoryDrinkware, CategoryStationery,
		CategoryAccessories, CategoryBags, CategoryElectronics:
		return Category(s), nil
	default:
		return "", ErrInvalidCategory
	}
}

func (c Category) String() string {
	return string(c)
}

// Product is the catalog item a redemption is priced against. The price is
// read at computation time; it is never locked across a quote/redeem pair.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	Image       string
	InStock     bool
	Inventory   int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) Validate() error {
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if _, err := NewCategory(string(p.Category)); err != nil {
		return err
	}
	return nil
}
