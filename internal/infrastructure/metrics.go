package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	corruption      *prometheus.CounterVec
	oauthExchanges  *prometheus.CounterVec
	settingsUpdates *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toothless",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		corruption: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toothless",
			Name:      "persistence_corruption_total",
			Help:      "Persisted collections or entries that could not be decoded.",
		}, []string{"collection"}),
		oauthExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toothless",
			Name:      "oauth_exchanges_total",
			Help:      "OAuth code exchanges, by outcome.",
		}, []string{"outcome"}),
		settingsUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toothless",
			Name:      "settings_updates_total",
			Help:      "Accepted settings updates, by category.",
		}, []string{"category"}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.corruption,
		m.oauthExchanges,
		m.settingsUpdates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}

func (m *Metrics) ObserveCorruption(collection string) {
	m.corruption.WithLabelValues(collection).Inc()
}

func (m *Metrics) ObserveExchange(outcome string) {
	m.oauthExchanges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSettingsUpdate(category string) {
	m.settingsUpdates.WithLabelValues(category).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
