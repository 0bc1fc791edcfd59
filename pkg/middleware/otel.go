package middleware

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/navigation"
)

// Default tracer name for outlet navigations.
const defaultTracerName = "outlet"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "outlet").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// IncludeUserID includes the principal's ID in spans.
	// May contain sensitive information - disabled by default.
	IncludeUserID bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav *navigation.Navigation) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ctx context.Context, nav *navigation.Navigation) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeUserID enables including the user ID in spans.
func WithIncludeUserID(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeUserID = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *navigation.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx context.Context, nav *navigation.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every navigation.
func OpenTelemetry(opts ...OTelOption) navigation.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(config.TracerName)

	return navigation.MiddlewareFunc(func(ctx context.Context, nav *navigation.Navigation, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("outlet.path", nav.Path),
			attribute.Int64("outlet.seq", int64(nav.Seq)),
		}
		if config.IncludeUserID {
			if p, ok := auth.UserFrom(ctx); ok {
				attrs = append(attrs, attribute.String("outlet.user_id", p.ID))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx, nav)...)
		}

		spanCtx, span := tracer.Start(ctx, "outlet.navigate",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)

		if res := nav.Result; res != nil {
			if res.Match != nil {
				span.SetAttributes(attribute.String("outlet.route", res.Match.Node.FullPattern()))
			}
			if res.Redirect != "" {
				span.SetAttributes(attribute.String("outlet.redirect", res.Redirect))
			}
		}
		span.SetAttributes(attribute.String("outlet.result", Outcome(nav.Result, err)))

		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, navigation.ErrSuperseded):
			// A newer navigation won; not a failure.
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}
