package goCart

import (
	"context"

	"github.com/MrEthical07/goCart/catalog"
)

// Products fetches the public catalog and applies filter. A zero
// filter.PageSize uses the configured page size. No session is required.
func (c *Client) Products(ctx context.Context, filter catalog.Filter) (catalog.Page, error) {
	if err := c.ready(); err != nil {
		return catalog.Page{}, err
	}
	products, err := c.gateway.Products(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("trace_id", traceIDFromContext(ctx)).Msg("load products")
		return catalog.Page{}, err
	}
	if filter.PageSize <= 0 {
		filter.PageSize = c.config.Catalog.PageSize
	}
	return filter.Apply(products), nil
}

// Product fetches one catalog entry.
func (c *Client) Product(ctx context.Context, productID string) (catalog.Product, error) {
	if err := c.ready(); err != nil {
		return catalog.Product{}, err
	}
	if productID == "" {
		return catalog.Product{}, ErrInvalidProduct
	}
	return c.gateway.Product(ctx, productID)
}

// Categories fetches the product categories.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.gateway.Categories(ctx)
}
