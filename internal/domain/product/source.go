package product

import (
	"context"
	"errors"
)

// Source resolves a product by ID. Implementations return ErrNotFound when the
// product does not exist in that source; any other error aborts resolution.
type Source interface {
	Resolve(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
}

// Chain tries each source in order, falling through on ErrNotFound. This
// replaces ad-hoc inline fallbacks with an ordered resolver chain: the primary
// store first, then the embedded demo catalog.
type Chain struct {
	sources []Source
}

func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

func (c *Chain) Resolve(ctx context.Context, id string) (*Product, error) {
	for _, s := range c.sources {
		p, err := s.Resolve(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// List returns the first non-empty catalog in chain order, so the demo
// catalog only shows when the primary store has no products.
func (c *Chain) List(ctx context.Context) ([]Product, error) {
	var lastErr error
	for _, s := range c.sources {
		products, err := s.List(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(products) > 0 {
			return products, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
