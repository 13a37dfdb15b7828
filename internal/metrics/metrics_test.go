package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"quotebot-go/internal/market"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	TicksTotal.Inc()
	ModuleFailures.WithLabelValues("Trend(STARFRUIT)").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{"ticks_total", "module_failures_total"} {
		if !names[want] {
			t.Fatalf("%s metric not found", want)
		}
	}
}

func sellCount(t *testing.T) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "orders_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["symbol"] == "AMETHYSTS" && labels["side"] == "SELL" {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserveOrdersBySide(t *testing.T) {
	before := sellCount(t)
	ObserveOrders(map[market.Product][]market.Order{
		market.Amethysts: {
			{Symbol: market.Amethysts, Price: 9_998, Quantity: 20},
			{Symbol: market.Amethysts, Price: 10_002, Quantity: -20},
		},
	})
	after := sellCount(t)
	if after-before != 1 {
		t.Fatalf("expected one sell order counted, got %v", after-before)
	}
}
