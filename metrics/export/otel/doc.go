// Package otel publishes goCart client counters through an OpenTelemetry meter.
//
// [NewExporter] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per latency bucket. A single callback reads
// [goCart.Client.MetricsSnapshot] on each collection cycle. The caller owns the
// MeterProvider.
//
// Sources that also implement [StateSource], as the Client does, get two more
// gauges: gocart_session_active and gocart_cart_lines.
package otel
