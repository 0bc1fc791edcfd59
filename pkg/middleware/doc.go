// Package middleware provides production middleware for navigations.
//
// # OpenTelemetry
//
// OpenTelemetry starts a span per navigation and hands the span's context to
// the rest of the chain, so guards and render helpers that accept a context
// join the trace. The span records the matched route pattern, the outcome and
// any error.
//
//	nav.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("outlet"),
//	    middleware.WithNavigationFilter(func(n *navigation.Navigation) bool {
//	        return n.Path != "/healthz"
//	    }),
//	))
//
// The tracer comes from the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure the provider in main before serving.
//
// # Prometheus
//
// Metrics counts navigations by outcome and observes their duration:
//   - outlet_navigations_total{result}
//   - outlet_navigation_duration_seconds{result}
//   - outlet_navigations_superseded_total
//   - outlet_active_connections
//   - outlet_websocket_errors_total{type}
//
//	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
//	nav.Use(metrics.Middleware())
//
// Collectors are registered when Metrics is created; create one Metrics per
// registry and share it between navigators.
package middleware
