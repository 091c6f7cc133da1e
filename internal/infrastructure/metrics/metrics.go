// Package metrics exposes Prometheus instruments for the HTTP layer and
// the ticketing and publishing pipelines.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

const namespace = "uevent"

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Checkout session outcomes
const (
	CheckoutCreated   = "created"
	CheckoutCompleted = "completed"
	CheckoutExpired   = "expired"
	CheckoutDuplicate = "duplicate"
)

// Metrics owns a private registry so tests can create as many as they like
type Metrics struct {
	registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	ticketsSold      *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	publishJobs      *prometheus.CounterVec
	eventsPublished  prometheus.Counter
	rateLimitHits    *prometheus.CounterVec
	wsConnections    prometheus.Gauge
	handlerOutcomes  *prometheus.CounterVec
}

// New creates the instruments and registers them with the Go runtime and
// process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
		ticketsSold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_sold_total",
			Help:      "Tickets issued, by payment provider",
		}, []string{"provider"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Stripe checkout sessions, by outcome",
		}, []string{"outcome"}),
		publishJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "jobs_total",
			Help:      "Delayed publish job runs, by outcome",
		}, []string{"outcome"}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events switched to PUBLISHED",
		}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by a rate limiter",
		}, []string{"scope"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open notification websocket connections",
		}),
		handlerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "handler_events_total",
			Help:      "Domain events seen by deduplicated bus handlers, by outcome",
		}, []string{"handler", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestLatency,
		m.ticketsSold,
		m.checkoutSessions,
		m.publishJobs,
		m.eventsPublished,
		m.rateLimitHits,
		m.wsConnections,
		m.handlerOutcomes,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB exports the connection pool statistics of db under the
// go_sql_* names
func (m *Metrics) RegisterDB(name string, db *sql.DB) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// CheckoutSession counts a checkout session outcome
func (m *Metrics) CheckoutSession(outcome string) {
	m.checkoutSessions.WithLabelValues(outcome).Inc()
}

// PublishOutcome counts a delayed publish job run
func (m *Metrics) PublishOutcome(outcome string) {
	m.publishJobs.WithLabelValues(outcome).Inc()
}

// RateLimitHit counts a rejected request
func (m *Metrics) RateLimitHit(scope string) {
	m.rateLimitHits.WithLabelValues(scope).Inc()
}

// WSConnected adjusts the open websocket gauge by delta
func (m *Metrics) WSConnected(delta int) {
	m.wsConnections.Add(float64(delta))
}

// HandlerOutcome counts one event delivery to a named bus handler
func (m *Metrics) HandlerOutcome(handler, outcome string) {
	m.handlerOutcomes.WithLabelValues(handler, outcome).Inc()
}

// EventTypes makes Metrics a bus handler for the business counters
func (m *Metrics) EventTypes() []string {
	return []string{ticketing.EventTypeTicketPurchased, event.EventTypeEventPublished}
}

// Handle updates counters from domain events
func (m *Metrics) Handle(_ context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *ticketing.TicketPurchasedEvent:
		m.ticketsSold.WithLabelValues(ev.Provider).Inc()
	case *event.EventPublishedEvent:
		m.eventsPublished.Inc()
	}
	return nil
}

var _ shared.EventHandler = (*Metrics)(nil)
