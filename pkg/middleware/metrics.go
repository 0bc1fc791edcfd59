package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/outlet-dev/outlet/pkg/navigation"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "outlet").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "outlet",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Navigation outcomes used as the result label.
const (
	ResultCommitted  = "committed"
	ResultNotFound   = "not_found"
	ResultRedirect   = "redirect"
	ResultForbidden  = "forbidden"
	ResultSuperseded = "superseded"
	ResultCanceled   = "canceled"
	ResultError      = "error"
)

// Metrics holds the navigation and connection collectors.
type Metrics struct {
	navigations       *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	superseded        prometheus.Counter
	activeConnections prometheus.Gauge
	wsErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration from resolve to commit in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"result"}),

		superseded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_superseded_total",
			Help:        "Total number of navigations abandoned for a newer one",
			ConstLabels: config.ConstLabels,
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of open WebSocket navigation connections",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates and registers metrics and returns their navigation
// middleware.
func Prometheus(opts ...MetricsOption) navigation.Middleware {
	return NewMetrics(opts...).Middleware()
}

// Middleware returns navigation middleware that records outcome and duration.
func (m *Metrics) Middleware() navigation.Middleware {
	return navigation.MiddlewareFunc(func(ctx context.Context, nav *navigation.Navigation, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)

		result := Outcome(nav.Result, err)
		m.duration.WithLabelValues(result).Observe(time.Since(start).Seconds())
		m.navigations.WithLabelValues(result).Inc()
		if result == ResultSuperseded {
			m.superseded.Inc()
		}
		return err
	})
}

// Outcome classifies a finished navigation into a low-cardinality label.
func Outcome(res *navigation.Result, err error) string {
	switch {
	case errors.Is(err, navigation.ErrSuperseded):
		return ResultSuperseded
	case errors.Is(err, navigation.ErrForbidden):
		return ResultForbidden
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	case err != nil:
		return ResultError
	case res == nil:
		return ResultCommitted
	case res.NotFound:
		return ResultNotFound
	case res.Redirect != "":
		return ResultRedirect
	default:
		return ResultCommitted
	}
}

// ConnectionOpened records a new WebSocket connection.
func (m *Metrics) ConnectionOpened() {
	m.activeConnections.Inc()
}

// ConnectionClosed records a closed WebSocket connection.
func (m *Metrics) ConnectionClosed() {
	m.activeConnections.Dec()
}

// WebSocketError records a WebSocket error.
func (m *Metrics) WebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}
