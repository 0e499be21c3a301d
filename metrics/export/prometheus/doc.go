// Package prometheus exposes goCart client counters as a Prometheus collector.
//
// [NewExporter] wraps a [goCart.Client] (or any [MetricsSource]) in a
// prometheus.Collector that reads a fresh snapshot on every scrape. The exporter
// keeps a private registry for [Exporter.Handler]; callers with their own
// registry use [Exporter.Register] instead. Counter names are gocart_*_total and
// the single histogram is gocart_gateway_latency_seconds.
package prometheus
