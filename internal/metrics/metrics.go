package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Webhook signals recorded, by terminal status"},
		[]string{"status"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders executed"},
		[]string{"mode", "side", "outcome"},
	)
	PaperBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "paper_balance", Help: "Paper account balance per asset"},
		[]string{"asset"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, OrdersTotal, PaperBalance)
}

// Handler exposes the default registry for mounting on an existing router.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a standalone metrics listener; an empty addr disables it.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
