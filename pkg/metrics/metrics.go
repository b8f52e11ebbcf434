// Package metrics expone los contadores Prometheus del bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager agrupa las métricas del bot sobre un registry propio, sin las
// métricas de Go por defecto.
type Manager struct {
	registry *prometheus.Registry

	OpportunitiesFound   prometheus.Counter
	BetsPlaced           prometheus.Counter
	BetsAccepted         prometheus.Counter
	BetsRejected         prometheus.Counter
	SettlementsProcessed prometheus.Counter
	SettlementsWon       prometheus.Counter
	SettlementsLost      prometheus.Counter
	ShoeResets           prometheus.Counter
	CycleDuration        prometheus.Histogram
	Balance              prometheus.Gauge
	Exposure             prometheus.Gauge
	PnL                  prometheus.Gauge
}

// NewManager crea las métricas bajo el namespace dado.
func NewManager(namespace string) *Manager {
	if namespace == "" {
		namespace = "baccarat_bot"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		OpportunitiesFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "opportunities_found_total",
			Help: "Oportunidades accionables encontradas.",
		}),
		BetsPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bets_placed_total",
			Help: "Órdenes de apuesta enviadas al venue.",
		}),
		BetsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bets_accepted_total",
			Help: "Apuestas aceptadas por el venue.",
		}),
		BetsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bets_rejected_total",
			Help: "Órdenes rechazadas o fallidas.",
		}),
		SettlementsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "settlements_processed_total",
			Help: "Settlements del feed procesados (tras dedup).",
		}),
		SettlementsWon: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "settlements_won_total",
			Help: "Apuestas liquidadas como ganadas.",
		}),
		SettlementsLost: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "settlements_lost_total",
			Help: "Apuestas liquidadas como perdidas.",
		}),
		ShoeResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "shoe_resets_total",
			Help: "Resets de shoe detectados por el tracker.",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "cycle_duration_seconds",
			Help:    "Duración de cada ciclo de polling.",
			Buckets: prometheus.DefBuckets,
		}),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "balance",
			Help: "Balance del ledger local.",
		}),
		Exposure: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "exposure",
			Help: "Exposición actual en apuestas pendientes.",
		}),
		PnL: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pnl",
			Help: "PnL neto acumulado desde el arranque.",
		}),
	}
}

// Handler devuelve el handler HTTP de /metrics sobre el registry propio.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve levanta el endpoint /metrics en la dirección dada. Bloquea, así
// que normalmente corre en su propia goroutine.
func (m *Manager) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
