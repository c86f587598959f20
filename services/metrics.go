package services

import (
	"strconv"
	"time"

	"NexoraPanel/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the panel's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	deliveries      *prometheus.CounterVec
	runsStarted     *prometheus.CounterVec
	runsFinished    *prometheus.CounterVec
	activeRuns      *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexora_deliveries_total",
				Help: "Post delivery attempts by module and outcome",
			},
			[]string{"module", "status"},
		),
		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexora_runs_started_total",
				Help: "Background runs started per module",
			},
			[]string{"module"},
		),
		runsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexora_runs_finished_total",
				Help: "Background runs finished per module and final status",
			},
			[]string{"module", "status"},
		),
		activeRuns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nexora_active_runs",
				Help: "Background runs currently alive per module",
			},
			[]string{"module"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexora_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nexora_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.deliveries,
		m.runsStarted,
		m.runsFinished,
		m.activeRuns,
		m.httpRequests,
		m.httpRequestTime,
	)
	return m
}

func (m *Metrics) ObserveDelivery(module string, status models.DeliveryStatus) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(module, string(status)).Inc()
}

func (m *Metrics) RunStarted(module string) {
	if m == nil {
		return
	}
	m.runsStarted.WithLabelValues(module).Inc()
	m.activeRuns.WithLabelValues(module).Inc()
}

func (m *Metrics) RunFinished(module string, status models.RunStatus) {
	if m == nil {
		return
	}
	m.runsFinished.WithLabelValues(module, string(status)).Inc()
	m.activeRuns.WithLabelValues(module).Dec()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
