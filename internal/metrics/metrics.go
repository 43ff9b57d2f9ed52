package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for hisctl.
// Record* helpers are safe on a nil *Metrics so components can run uninstrumented.
type Metrics struct {
	// Gateway metrics
	GatewayRequests     *prometheus.CounterVec
	GatewayLatency      *prometheus.HistogramVec
	GatewayUnauthorized *prometheus.CounterVec
	SessionRedirects    *prometheus.CounterVec

	// Session metrics
	SessionEvents *prometheus.CounterVec

	// Navigation metrics
	Resolutions *prometheus.CounterVec

	// Error metrics (by structured error code)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_gateway_requests_total",
				Help: "Total number of backend requests by method and status class",
			},
			[]string{"method", "status"},
		),
		GatewayLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "his_gateway_request_duration_seconds",
				Help:    "Backend request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		GatewayUnauthorized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_gateway_unauthorized_total",
				Help: "Total number of 401 responses by how they were handled",
			},
			[]string{"action"},
		),
		SessionRedirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_session_redirects_total",
				Help: "Total number of forced redirects to the login view",
			},
			[]string{"source"},
		),
		SessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_session_events_total",
				Help: "Total number of session lifecycle events",
			},
			[]string{"event"},
		),
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_navigation_resolutions_total",
				Help: "Total number of route resolutions by outcome",
			},
			[]string{"outcome"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "his_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordRequest counts a finished backend request. status 0 means the
// request never got a response.
func (m *Metrics) RecordRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(method, StatusClass(status)).Inc()
	m.GatewayLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordUnauthorized counts a 401 and what the gateway did about it.
func (m *Metrics) RecordUnauthorized(action string) {
	if m == nil {
		return
	}
	m.GatewayUnauthorized.WithLabelValues(action).Inc()
}

// RecordRedirect counts a forced navigation to the login view.
func (m *Metrics) RecordRedirect(source string) {
	if m == nil {
		return
	}
	m.SessionRedirects.WithLabelValues(source).Inc()
}

// RecordSessionEvent counts login, logout, expiry and initialization.
func (m *Metrics) RecordSessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

// RecordResolution counts a navigation outcome.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// RecordError counts a coded error.
func (m *Metrics) RecordError(code, component string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

// StatusClass buckets an HTTP status as "2xx", "4xx", ... or "error".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
