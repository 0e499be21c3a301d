package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/order"
)

type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// ListCart returns the server's cart lines for the current user.
func (c *Client) ListCart(ctx context.Context) ([]cart.Record, error) {
	body, err := c.do(ctx, call{
		op:       "list_cart",
		method:   http.MethodGet,
		path:     "cart",
		fallback: "failed to load cart",
	})
	if err != nil {
		return nil, err
	}

	// Anything but an array is an empty cart.
	records := []cart.Record{}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return records, nil
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &Error{Op: "list_cart", Status: http.StatusOK, Message: "failed to load cart", Err: fmt.Errorf("decode response: %w", err)}
	}
	return records, nil
}

// AddToCart asks the server to add quantity units of productRef. The server merges
// into an existing line for the same product.
func (c *Client) AddToCart(ctx context.Context, productRef string, quantity int) error {
	_, err := c.do(ctx, call{
		op:       "add_to_cart",
		method:   http.MethodPost,
		path:     "addCart",
		body:     addCartRequest{ProductID: productRef, Quantity: quantity},
		fallback: "failed to add to cart",
	})
	return err
}

// UpdateQuantity sets the quantity of a server cart line.
func (c *Client) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	_, err := c.do(ctx, call{
		op:       "update_quantity",
		method:   http.MethodPut,
		path:     "cart/" + url.PathEscape(lineID),
		body:     quantityRequest{Quantity: quantity},
		fallback: "failed to update quantity",
	})
	return err
}

// RemoveFromCart deletes a server cart line.
func (c *Client) RemoveFromCart(ctx context.Context, lineID string) error {
	_, err := c.do(ctx, call{
		op:       "remove_from_cart",
		method:   http.MethodDelete,
		path:     "cart/" + url.PathEscape(lineID),
		fallback: "failed to remove from cart",
	})
	return err
}

// Checkout converts the server cart into an order.
func (c *Client) Checkout(ctx context.Context) (order.Order, error) {
	var o order.Order
	_, err := c.do(ctx, call{
		op:         "checkout",
		method:     http.MethodPost,
		path:       "checkout",
		fallback:   "failed to create order",
		decodeInto: &o,
	})
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}
