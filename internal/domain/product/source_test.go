//go:build unit

package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-api/internal/domain/product"
)

type staticSource struct {
	byID map[string]*product.Product
	err  error
}

func (s *staticSource) Resolve(_ context.Context, id string) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (s *staticSource) List(context.Context) ([]product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]product.Product, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, nil
}

func TestChain_Resolve(t *testing.T) {
	ctx := context.Background()
	primary := &staticSource{byID: map[string]*product.Product{
		"p-1": {ID: "p-1", Name: "Primary Shirt", Price: decimal.RequireFromString("25.00"), Category: product.CategoryApparel, InStock: true},
	}}
	chain := product.NewChain(primary, product.NewDemoCatalog())

	t.Run("primary source wins", func(t *testing.T) {
		p, err := chain.Resolve(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Primary Shirt", p.Name)
	})

	t.Run("falls through to the demo catalog", func(t *testing.T) {
		p, err := chain.Resolve(ctx, "demo-1")
		require.NoError(t, err)
		assert.Equal(t, "Premium T-Shirt", p.Name)
	})

	t.Run("not found anywhere", func(t *testing.T) {
		_, err := chain.Resolve(ctx, "nope")
		require.ErrorIs(t, err, product.ErrNotFound)
	})

	t.Run("non-not-found errors abort resolution", func(t *testing.T) {
		broken := &staticSource{err: errors.New("connection reset")}
		c := product.NewChain(broken, product.NewDemoCatalog())
		_, err := c.Resolve(ctx, "demo-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, product.ErrNotFound)
	})
}

func TestChain_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty primary store shows the demo catalog", func(t *testing.T) {
		chain := product.NewChain(&staticSource{byID: map[string]*product.Product{}}, product.NewDemoCatalog())
		products, err := chain.List(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 8)
	})

	t.Run("seeded primary store hides the demo catalog", func(t *testing.T) {
		primary := &staticSource{byID: map[string]*product.Product{
			"p-1": {ID: "p-1", Name: "Primary Shirt", Price: decimal.RequireFromString("25.00"), Category: product.CategoryApparel, InStock: true},
		}}
		chain := product.NewChain(primary, product.NewDemoCatalog())
		products, err := chain.List(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "p-1", products[0].ID)
	})
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name  string
		p     product.Product
		errIs error
	}{
		{
			name: "valid product",
			p:    product.Product{ID: "p-1", Name: "Shirt", Price: decimal.RequireFromString("10.00"), Category: product.CategoryApparel},
		},
		{
			name:  "negative price",
			p:     product.Product{ID: "p-1", Name: "Shirt", Price: decimal.RequireFromString("-1.00"), Category: product.CategoryApparel},
			errIs: product.ErrNegativePrice,
		},
		{
			name:  "unknown category",
			p:     product.Product{ID: "p-1", Name: "Shirt", Price: decimal.RequireFromString("10.00"), Category: "Furniture"},
			errIs: product.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
		})
	}
}
