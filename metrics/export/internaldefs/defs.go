package internaldefs

import (
	goCart "github.com/MrEthical07/goCart"
)

// CounterDef binds a client counter to its exported name.
type CounterDef struct {
	ID   goCart.MetricID
	Name string
	Help string
}

// HistogramDef binds a client histogram to its exported name.
type HistogramDef struct {
	ID   goCart.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goCart.MetricSessionRestored, Name: "gocart_session_restored_total", Help: "Sessions restored from a persisted token."},
	{ID: goCart.MetricSessionDecodeFailed, Name: "gocart_session_decode_failed_total", Help: "Persisted tokens discarded because they could not be decoded."},
	{ID: goCart.MetricLoginSuccess, Name: "gocart_login_success_total", Help: "Successful logins."},
	{ID: goCart.MetricLoginFailure, Name: "gocart_login_failure_total", Help: "Failed logins."},
	{ID: goCart.MetricLogout, Name: "gocart_logout_total", Help: "Explicit logouts."},
	{ID: goCart.MetricSessionTeardown, Name: "gocart_session_teardown_total", Help: "Sessions torn down after a 401 response."},
	{ID: goCart.MetricCartSyncSuccess, Name: "gocart_cart_sync_success_total", Help: "Successful cart syncs."},
	{ID: goCart.MetricCartSyncFailure, Name: "gocart_cart_sync_failure_total", Help: "Failed cart syncs."},
	{ID: goCart.MetricCartMutationConfirmed, Name: "gocart_cart_mutation_confirmed_total", Help: "Cart mutations accepted by the server."},
	{ID: goCart.MetricCartMutationRejected, Name: "gocart_cart_mutation_rejected_total", Help: "Cart mutations rejected by the server or transport."},
	{ID: goCart.MetricCheckoutSuccess, Name: "gocart_checkout_success_total", Help: "Orders placed."},
	{ID: goCart.MetricCheckoutFailure, Name: "gocart_checkout_failure_total", Help: "Failed checkouts."},
	{ID: goCart.MetricOrderCanceled, Name: "gocart_order_canceled_total", Help: "Orders canceled."},
	{ID: goCart.MetricOrderDeleted, Name: "gocart_order_deleted_total", Help: "Orders deleted."},
	{ID: goCart.MetricGatewayRequest, Name: "gocart_gateway_requests_total", Help: "Requests sent to the storefront API."},
	{ID: goCart.MetricGatewayFailure, Name: "gocart_gateway_failures_total", Help: "Requests that got no response or a 4xx/5xx status."},
}

var HistogramDefs = []HistogramDef{
	{ID: goCart.MetricGatewayLatency, Name: "gocart_gateway_latency_seconds", Help: "Storefront API request latency."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const (
	AuditDroppedName = "gocart_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// State gauges, exported when the source also reports session state.
const (
	SessionActiveName = "gocart_session_active"
	SessionActiveHelp = "1 while a session with a user id is held, else 0."
	CartLinesName     = "gocart_cart_lines"
	CartLinesHelp     = "Lines in the local cart snapshot."
)

// HistogramBounds are the finite upper bounds in seconds. The last snapshot bucket
// is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that cannot
// carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the eight snapshot buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
