package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrEthical07/goCart/order"
)

// OrdersByUser lists every order placed by userID.
func (c *Client) OrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	var orders []order.Order
	_, err := c.do(ctx, call{
		op:         "list_orders",
		method:     http.MethodGet,
		path:       "user/" + url.PathEscape(userID),
		fallback:   "failed to load orders",
		decodeInto: &orders,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return orders, nil
}

// CancelOrder cancels orderID. taskID is optional.
func (c *Client) CancelOrder(ctx context.Context, orderID, taskID string) error {
	_, err := c.do(ctx, call{
		op:       "cancel_order",
		method:   http.MethodPut,
		path:     "orders/cancel-order",
		query:    orderQuery(orderID, taskID),
		fallback: "failed to cancel order",
	})
	return err
}

// DeleteOrder marks orderID deleted. taskID is optional.
func (c *Client) DeleteOrder(ctx context.Context, orderID, taskID string) error {
	_, err := c.do(ctx, call{
		op:       "delete_order",
		method:   http.MethodPut,
		path:     "orders/delete-order",
		query:    orderQuery(orderID, taskID),
		fallback: "failed to delete order",
	})
	return err
}

func orderQuery(orderID, taskID string) url.Values {
	q := url.Values{"orderId": {orderID}}
	if taskID != "" {
		q.Set("taskId", taskID)
	}
	return q
}
