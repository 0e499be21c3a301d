package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrEthical07/goCart/catalog"
)

// Catalog reads are public: they carry no bearer token and a 401 never tears
// the session down.

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	_, err := c.do(ctx, call{
		op:         "list_products",
		method:     http.MethodGet,
		path:       "products",
		fallback:   "failed to load products",
		anonymous:  true,
		decodeInto: &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

// Product returns one catalog entry. An unknown id is a 404 failure.
func (c *Client) Product(ctx context.Context, productID string) (catalog.Product, error) {
	var out catalog.Product
	_, err := c.do(ctx, call{
		op:         "get_product",
		method:     http.MethodGet,
		path:       "products/" + url.PathEscape(productID),
		fallback:   "failed to load product",
		anonymous:  true,
		decodeInto: &out,
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

// Categories lists the product categories.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	_, err := c.do(ctx, call{
		op:         "list_categories",
		method:     http.MethodGet,
		path:       "categories",
		fallback:   "failed to load categories",
		anonymous:  true,
		decodeInto: &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Category{}
	}
	return out, nil
}
