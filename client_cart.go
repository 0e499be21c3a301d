package goCart

import (
	"context"
	"time"

	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/order"
)

// Cart returns a copy of the local cart.
func (c *Client) Cart() cart.Snapshot {
	if c == nil {
		return cart.Snapshot{}
	}
	return c.cart.Snapshot()
}

// CartCount is the number of lines in the local cart.
func (c *Client) CartCount() int {
	return c.Cart().Count()
}

// SyncCart replaces the local cart with the server list. Without a session id the
// cart is emptied and nothing is called.
func (c *Client) SyncCart(ctx context.Context) (cart.Snapshot, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.cart.Sync(ctx)
}

// AddToCart optimistically merges quantity units of productRef, then confirms
// against the server. See [cart.Reconciler.Add].
func (c *Client) AddToCart(ctx context.Context, productRef string, quantity int) (cart.Mutation, error) {
	if err := c.ready(); err != nil {
		return cart.Mutation{}, err
	}
	return c.confirmed(c.cart.Add(ctx, productRef, quantity))
}

// RemoveFromCart optimistically drops lineID, then confirms against the server.
func (c *Client) RemoveFromCart(ctx context.Context, lineID string) (cart.Mutation, error) {
	if err := c.ready(); err != nil {
		return cart.Mutation{}, err
	}
	return c.confirmed(c.cart.Remove(ctx, lineID))
}

// UpdateQuantity optimistically sets the quantity of lineID, then confirms against
// the server. Zero is sent as is; negative quantities return ErrInvalidQuantity.
func (c *Client) UpdateQuantity(ctx context.Context, lineID string, quantity int) (cart.Mutation, error) {
	if err := c.ready(); err != nil {
		return cart.Mutation{}, err
	}
	return c.confirmed(c.cart.SetQuantity(ctx, lineID, quantity))
}

func (c *Client) confirmed(m cart.Mutation, err error) (cart.Mutation, error) {
	if err == nil && m.State == cart.StateConfirmed {
		c.metricInc(MetricCartMutationConfirmed)
	}
	return m, err
}

// Checkout places an order for the server cart. On success the local cart is
// synced, which normally leaves it empty. Failures are returned unchanged.
func (c *Client) Checkout(ctx context.Context) (order.Order, error) {
	if err := c.ready(); err != nil {
		return order.Order{}, err
	}
	if !c.holder.Active() {
		return order.Order{}, ErrNoSession
	}

	start := c.now()
	placed, err := c.gateway.Checkout(ctx)
	if err != nil {
		c.metricInc(MetricCheckoutFailure)
		c.log.Warn().Err(err).Str("trace_id", traceIDFromContext(ctx)).Msg("checkout failed")
		c.emitAudit(ctx, AuditCheckoutFailure, false, c.currentSession(), err, nil)
		return order.Order{}, err
	}

	c.metricInc(MetricCheckoutSuccess)
	c.emitAudit(ctx, AuditCheckoutSuccess, true, c.currentSession(), nil, func() map[string]string {
		return map[string]string{
			"order_id": placed.ID,
			"elapsed":  elapsedSince(c.now, start),
		}
	})

	_, _ = c.cart.Sync(ctx)
	return placed, nil
}

// Orders fetches the current user's orders and applies view. A zero
// view.PageSize uses the configured page size.
func (c *Client) Orders(ctx context.Context, view order.View) (order.Page, error) {
	if err := c.ready(); err != nil {
		return order.Page{}, err
	}
	s, ok := c.holder.Load()
	if !ok || !s.HasID() {
		return order.Page{}, ErrNoSession
	}

	orders, err := c.gateway.OrdersByUser(ctx, s.ID)
	if err != nil {
		return order.Page{}, err
	}
	if view.PageSize <= 0 {
		view.PageSize = c.config.Orders.PageSize
	}
	return view.Apply(orders), nil
}

// CancelOrder cancels orderID. taskID identifies the pending workflow task and may
// be empty.
func (c *Client) CancelOrder(ctx context.Context, orderID, taskID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.holder.Active() {
		return ErrNoSession
	}
	if err := c.gateway.CancelOrder(ctx, orderID, taskID); err != nil {
		return err
	}
	c.metricInc(MetricOrderCanceled)
	return nil
}

// DeleteOrder marks orderID deleted. taskID may be empty.
func (c *Client) DeleteOrder(ctx context.Context, orderID, taskID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.holder.Active() {
		return ErrNoSession
	}
	if err := c.gateway.DeleteOrder(ctx, orderID, taskID); err != nil {
		return err
	}
	c.metricInc(MetricOrderDeleted)
	return nil
}

func elapsedSince(now func() time.Time, start time.Time) string {
	return now().Sub(start).Round(time.Millisecond).String()
}
