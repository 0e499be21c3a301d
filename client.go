package goCart

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCart/api"
	"github.com/MrEthical07/goCart/cart"
	"github.com/MrEthical07/goCart/internal/audit"
	"github.com/MrEthical07/goCart/jwt"
	"github.com/MrEthical07/goCart/session"
	"github.com/rs/zerolog"
)

// Client is the storefront session and cart client. Create it with [New] and
// [Builder.Build]. It is safe for concurrent use.
//
// The client owns three pieces of state: the persisted token, the decoded session
// derived from it, and the local cart snapshot. Every transition of one is
// reflected in the others: logout and any 401 clear all three; a new session
// triggers a cart sync.
type Client struct {
	config Config
	log    zerolog.Logger
	now    func() time.Time

	tokens   session.TokenStore
	holder   *session.Holder
	decoder  *jwt.Decoder
	gateway  *api.Client
	cart     *cart.Reconciler
	navigate func(context.Context, Navigation)

	audit   *audit.Dispatcher
	metrics *Metrics

	closed atomic.Bool
}

// Close stops the audit dispatcher after flushing buffered events. Operations on a
// closed client return ErrClientNotReady.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.Swap(true) {
		return
	}
	c.audit.Close()
}

// AuditDropped reports audit events discarded under backpressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// Config returns a copy of the active configuration.
func (c *Client) Config() Config {
	return cloneConfig(c.config)
}

func (c *Client) ready() error {
	if c == nil || c.closed.Load() {
		return ErrClientNotReady
	}
	return nil
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// bearer feeds the persisted token to the gateway.
func (c *Client) bearer(ctx context.Context) string {
	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return ""
	}
	return tok
}

func (c *Client) observeGateway(_ context.Context, _ string, status int, elapsed time.Duration) {
	c.metricInc(MetricGatewayRequest)
	if status == 0 || status >= 400 {
		c.metricInc(MetricGatewayFailure)
	}
	if c.metrics != nil {
		c.metrics.Observe(MetricGatewayLatency, elapsed)
	}
}

func (c *Client) onCartSync(ctx context.Context, lines int, err error) {
	if err == nil {
		c.metricInc(MetricCartSyncSuccess)
		return
	}
	c.metricInc(MetricCartSyncFailure)
	c.emitAudit(ctx, AuditCartSyncFailed, false, c.currentSession(), err, nil)
}

func (c *Client) onCartReject(ctx context.Context, op cart.Op, err error) {
	c.metricInc(MetricCartMutationRejected)
	c.emitAudit(ctx, AuditCartMutationRejected, false, c.currentSession(), err, func() map[string]string {
		return map[string]string{
			"op":     string(op),
			"policy": c.config.Cart.RejectPolicy.String(),
		}
	})
}
