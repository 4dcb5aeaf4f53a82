package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "comparecarts/internal/errors"
)

// Metrics holds the service's collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	authAttempts   *prometheus.CounterVec
	reviewsCreated *prometheus.CounterVec
	creditsGranted prometheus.Counter
	creditFailures prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Signup and login attempts by outcome",
		}, []string{"operation", "outcome"}),
		reviewsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviews_created_total",
			Help: "Reviews stored, by category",
		}, []string{"category"}),
		creditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credits_granted_total",
			Help: "Credits granted for posted reviews",
		}),
		creditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_grant_failures_total",
			Help: "Reviews stored whose credit increment failed",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.authAttempts,
		m.reviewsCreated,
		m.creditsGranted,
		m.creditFailures,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency per route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var echoErr *echo.HTTPError
				var httpErr *apperrors.HTTPError
				switch {
				case errors.As(err, &echoErr):
					status = echoErr.Code
				case errors.As(err, &httpErr):
					status = httpErr.StatusCode
				default:
					status = apperrors.MapErrorToHTTP(err).StatusCode
				}
			}
			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			m.httpRequests.WithLabelValues(labels...).Inc()
			m.httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// AuthAttempt counts a signup or login outcome.
func (m *Metrics) AuthAttempt(operation string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// ReviewCreated counts a stored review.
func (m *Metrics) ReviewCreated(category string) {
	if m == nil {
		return
	}
	m.reviewsCreated.WithLabelValues(category).Inc()
}

// CreditsGranted adds to the granted credits total.
func (m *Metrics) CreditsGranted(amount int) {
	if m == nil {
		return
	}
	m.creditsGranted.Add(float64(amount))
}

// CreditGrantFailed counts a review whose credit increment did not happen.
func (m *Metrics) CreditGrantFailed() {
	if m == nil {
		return
	}
	m.creditFailures.Inc()
}
