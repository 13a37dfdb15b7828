// Package metrics exposes the trader's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quotebot-go/internal/market"
)

var (
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Trading states processed"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders emitted"},
		[]string{"symbol", "side"},
	)
	ModuleFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "module_failures_total", Help: "Strategy modules that errored, panicked, timed out or breached limits"},
		[]string{"module"},
	)
	SessionPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "session_pnl", Help: "Marked-to-market session value"},
	)
	SpreadZScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "spread_zscore", Help: "Latest z-score of each tracked spread"},
		[]string{"instrument"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, OrdersTotal, ModuleFailures, SessionPnL, SpreadZScore)
}

// ObserveOrders counts every emitted order by symbol and side.
func ObserveOrders(orders map[market.Product][]market.Order) {
	for sym, list := range orders {
		for _, o := range list {
			OrdersTotal.WithLabelValues(string(sym), string(o.Side())).Inc()
		}
	}
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
