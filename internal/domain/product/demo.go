package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// DemoCatalog is the last resolver in the product source chain. It keeps the
// storefront browsable before the database has been seeded.
type DemoCatalog struct {
	products []Product
}

func NewDemoCatalog() *DemoCatalog {
	return &DemoCatalog{products: demoProducts()}
}

func (d *DemoCatalog) Resolve(_ context.Context, id string) (*Product, error) {
	for i := range d.products {
		if d.products[i].ID == id {
			p := d.products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (d *DemoCatalog) List(_ context.Context) ([]Product, error) {
	out := make([]Product, len(d.products))
	copy(out, d.products)
	return out, nil
}

func demoProducts() []Product {
	price := decimal.RequireFromString
	return []Product{
		{ID: "demo-1", Name: "Premium T-Shirt", Description: "Comfortable cotton t-shirt with platform branding.", Price: price("29.99"), Category: CategoryApparel, Image: "/images/tshirt.jpg", InStock: true, Inventory: 100},
		{ID: "demo-2", Name: "Coffee Mug", Description: "Ceramic coffee mug, 350ml, dishwasher safe.", Price: price("19.99"), Category: CategoryDrinkware, Image: "/images/mug.jpg", InStock: true, Inventory: 100},
		{ID: "demo-3", Name: "Hoodie", Description: "Fleece-lined hoodie with kangaroo pocket.", Price: price("59.99"), Category: CategoryApparel, Image: "/images/hoodie.jpg", InStock: true, Inventory: 100},
		{ID: "demo-4", Name: "Notebook", Description: "200-page spiral notebook with premium paper.", Price: price("24.99"), Category: CategoryStationery, Image: "/images/notebook.jpg", InStock: true, Inventory: 100},
		{ID: "demo-5", Name: "Sticker Pack", Description: "Ten high-quality vinyl stickers.", Price: price("9.99"), Category: CategoryAccessories, Image: "/images/stickers.jpg", InStock: true, Inventory: 100},
		{ID: "demo-6", Name: "Backpack", Description: "Water-resistant backpack with laptop compartment.", Price: price("79.99"), Category: CategoryBags, Image: "/images/backpack.jpg", InStock: true, Inventory: 100},
		{ID: "demo-7", Name: "Wireless Headphones", Description: "Noise-canceling headphones, 30-hour battery.", Price: price("89.99"), Category: CategoryElectronics, Image: "/images/headphones.jpg", InStock: true, Inventory: 100},
		{ID: "demo-8", Name: "Mechanical Keyboard", Description: "RGB mechanical keyboard with macro keys.", Price: price("149.99"), Category: CategoryElectronics, Image: "/images/keyboard.jpg", InStock: true, Inventory: 100},
	}
}
