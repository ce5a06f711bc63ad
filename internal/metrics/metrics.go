// Package metrics provides Prometheus metrics for the portfolio server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	PageViews          prometheus.Counter
	GalleryToggles     *prometheus.CounterVec
	SectionsRevealed   *prometheus.CounterVec
	ContactSubmissions *prometheus.CounterVec
	MessagesStored     prometheus.Counter
	AlertsTotal        *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total HTTP requests by route and status code.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		PageViews: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolio_page_views_total",
				Help: "Total full page renders.",
			},
		),
		GalleryToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_gallery_toggles_total",
				Help: "Project card toggles by resulting state.",
			},
			[]string{"state"},
		),
		SectionsRevealed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_sections_revealed_total",
				Help: "Sections revealed by scrolling, by section.",
			},
			[]string{"section"},
		),
		ContactSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_contact_submissions_total",
				Help: "Contact form submissions by outcome.",
			},
			[]string{"outcome"},
		),
		MessagesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolio_contact_messages_stored_total",
				Help: "Contact messages accepted by the backend.",
			},
		),
		AlertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_alerts_total",
				Help: "Owner alerts by channel and result.",
			},
			[]string{"channel", "result"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portfolio_active_sessions",
				Help: "Visitor sessions currently held in memory.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.PageViews)
	reg.MustRegister(m.GalleryToggles)
	reg.MustRegister(m.SectionsRevealed)
	reg.MustRegister(m.ContactSubmissions)
	reg.MustRegister(m.MessagesStored)
	reg.MustRegister(m.AlertsTotal)
	reg.MustRegister(m.ActiveSessions)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(route, status string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordToggle records a gallery toggle.
func (m *Metrics) RecordToggle(expanded bool) {
	state := "collapsed"
	if expanded {
		state = "expanded"
	}
	m.GalleryToggles.WithLabelValues(state).Inc()
}

// RecordReveal records a revealed section.
func (m *Metrics) RecordReveal(section string) {
	m.SectionsRevealed.WithLabelValues(section).Inc()
}

// RecordSubmission records a contact form submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// RecordMessageStored records a contact message accepted by the backend.
func (m *Metrics) RecordMessageStored() {
	m.MessagesStored.Inc()
}

// RecordSessions sets the number of live visitor sessions.
func (m *Metrics) RecordSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordPageView records a full page render.
func (m *Metrics) RecordPageView() {
	m.PageViews.Inc()
}

// RecordAlert records an owner alert delivery.
func (m *Metrics) RecordAlert(channel string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.AlertsTotal.WithLabelValues(channel, result).Inc()
}
