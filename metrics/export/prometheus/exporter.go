package prometheus

import (
	"net/http"

	goCart "github.com/MrEthical07/goCart"
	"github.com/MrEthical07/goCart/metrics/export/internaldefs"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSource is what the exporter reads on every scrape. *goCart.Client
// implements it.
type MetricsSource interface {
	MetricsSnapshot() goCart.MetricsSnapshot
	AuditDropped() uint64
}

// StateSource is optionally implemented by a MetricsSource to export the
// current session and cart state as gauges.
type StateSource interface {
	Active() bool
	CartCount() int
}

type counterDesc struct {
	id   goCart.MetricID
	desc *prom.Desc
}

// Exporter is a prometheus.Collector over a MetricsSource.
type Exporter struct {
	source     MetricsSource
	registry   *prom.Registry
	counters   []counterDesc
	histograms []counterDesc
	dropped    *prom.Desc

	state  StateSource
	active *prom.Desc
	lines  *prom.Desc
}

// NewExporter returns an Exporter reading from client.
func NewExporter(client *goCart.Client) *Exporter {
	return NewExporterFromSource(client)
}

// NewExporterFromSource returns an Exporter reading from source.
func NewExporterFromSource(source MetricsSource) *Exporter {
	e := &Exporter{
		source:     source,
		counters:   make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms: make([]counterDesc, 0, len(internaldefs.HistogramDefs)),
		dropped:    prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	if st, ok := source.(StateSource); ok {
		e.state = st
		e.active = prom.NewDesc(internaldefs.SessionActiveName, internaldefs.SessionActiveHelp, nil, nil)
		e.lines = prom.NewDesc(internaldefs.CartLinesName, internaldefs.CartLinesHelp, nil, nil)
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters = append(e.counters, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms = append(e.histograms, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}

	e.registry = prom.NewRegistry()
	e.registry.MustRegister(e)
	return e
}

// Register adds the exporter to reg, for callers exposing their own registry.
func (e *Exporter) Register(reg prom.Registerer) error {
	return reg.Register(e)
}

// Handler serves the exporter's private registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Exporter) Describe(ch chan<- *prom.Desc) {
	for _, c := range e.counters {
		ch <- c.desc
	}
	for _, h := range e.histograms {
		ch <- h.desc
	}
	ch <- e.dropped
	if e.state != nil {
		ch <- e.active
		ch <- e.lines
	}
}

// Collect emits nothing but the dropped-audit counter and the state gauges
// while client metrics are disabled.
func (e *Exporter) Collect(ch chan<- prom.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		v, ok := snapshot.Counters[c.id]
		if !ok {
			continue
		}
		ch <- prom.MustNewConstMetric(c.desc, prom.CounterValue, float64(v))
	}

	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		// Snapshots carry no sum.
		ch <- prom.MustNewConstHistogram(h.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prom.MustNewConstMetric(e.dropped, prom.CounterValue, float64(e.source.AuditDropped()))

	if e.state != nil {
		var active float64
		if e.state.Active() {
			active = 1
		}
		ch <- prom.MustNewConstMetric(e.active, prom.GaugeValue, active)
		ch <- prom.MustNewConstMetric(e.lines, prom.GaugeValue, float64(e.state.CartCount()))
	}
}
