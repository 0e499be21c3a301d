package otel

import (
	"context"
	"sync"
	"testing"

	goCart "github.com/MrEthical07/goCart"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goCart.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goCart.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goCart.MetricsSnapshot{
		Counters:   make(map[goCart.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goCart.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

type statefulSource struct {
	*fakeSource
	active bool
	lines  int
}

func (s statefulSource) Active() bool   { return s.active }
func (s statefulSource) CartCount() int { return s.lines }

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findInt64(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("gocart-test")

	src := &fakeSource{
		snapshot: goCart.MetricsSnapshot{
			Counters: map[goCart.MetricID]uint64{
				goCart.MetricCheckoutSuccess: 3,
			},
			Histograms: map[goCart.MetricID][]uint64{
				goCart.MetricGatewayLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	cases := map[string]int64{
		"gocart_checkout_success_total":                  3,
		"gocart_audit_dropped_total":                     1,
		"gocart_gateway_latency_seconds_bucket_le_0_025": 3,
		"gocart_gateway_latency_seconds_bucket_le_inf":   8,
		"gocart_gateway_latency_seconds_count":           8,
	}
	for name, want := range cases {
		got, ok := findInt64(rm, name)
		if !ok {
			t.Fatalf("metric %s not collected", name)
		}
		if got != want {
			t.Fatalf("%s = %d, want %d", name, got, want)
		}
	}
	if _, ok := findInt64(rm, "gocart_logout_total"); ok {
		t.Fatalf("counters absent from the snapshot must not be observed")
	}
	if _, ok := findInt64(rm, "gocart_session_active"); ok {
		t.Fatalf("state gauges need a StateSource")
	}
}

func TestExporterObservesSessionState(t *testing.T) {
	reader, provider := newReader()
	src := statefulSource{fakeSource: &fakeSource{}, active: true, lines: 2}

	exp, err := NewExporterFromSource(provider.Meter("gocart-test"), src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got, ok := findInt64(rm, "gocart_session_active"); !ok || got != 1 {
		t.Fatalf("gocart_session_active = %d (%v), want 1", got, ok)
	}
	if got, ok := findInt64(rm, "gocart_cart_lines"); !ok || got != 2 {
		t.Fatalf("gocart_cart_lines = %d (%v), want 2", got, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newReader()
	meter := provider.Meter("gocart-test")

	if _, err := NewExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil client, got %v", err)
	}
	if _, err := NewExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterReadsClient(t *testing.T) {
	reader, provider := newReader()
	c, err := goCart.New().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()
	c.Logout(context.Background())
	c.Logout(context.Background())

	exp, err := NewExporter(provider.Meter("gocart-test"), c)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got, ok := findInt64(rm, "gocart_logout_total"); !ok || got != 2 {
		t.Fatalf("gocart_logout_total = %d (%v), want 2", got, ok)
	}
	if got, ok := findInt64(rm, "gocart_session_active"); !ok || got != 0 {
		t.Fatalf("gocart_session_active = %d (%v), want 0 after logout", got, ok)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("gocart-test")

	src := &fakeSource{
		snapshot: goCart.MetricsSnapshot{
			Counters: map[goCart.MetricID]uint64{
				goCart.MetricGatewayRequest: 1,
			},
			Histograms: map[goCart.MetricID][]uint64{
				goCart.MetricGatewayLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goCart.MetricGatewayRequest] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
