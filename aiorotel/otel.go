// Package aiorotel connects aior routers to OpenTelemetry tracing.
package aiorotel

import (
	"context"
	"net/http"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dephin/aior"
)

// ScopeName is the instrumentation scope used for spans.
const ScopeName = "github.com/dephin/aior"

// Tracer implements aior.SpanStarter with an OpenTelemetry tracer.
type Tracer struct {
	tracer trace.Tracer
}

var _ aior.SpanStarter = (*Tracer)(nil)

// Option configures a Tracer.
type Option func(*options)

type options struct {
	provider trace.TracerProvider
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.provider = tp
	}
}

// New returns a Tracer. Pass it to aior.WithTracer.
func New(opts ...Option) *Tracer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		o.provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: o.provider.Tracer(ScopeName)}
}

// StartSpan starts a server span named after the matched route.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(convertAttrs(attrs)...),
	)
	return ctx, func() { span.End() }
}

// convertAttrs maps the router's attribute names onto semantic conventions
// where one exists. Keys are sorted so spans are stable.
func convertAttrs(attrs map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	kvs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		v := attrs[k]
		switch k {
		case "http.method":
			kvs = append(kvs, semconv.HTTPRequestMethodKey.String(v))
		case "http.route":
			kvs = append(kvs, semconv.HTTPRoute(v))
		default:
			kvs = append(kvs, attribute.String(k, v))
		}
	}
	return kvs
}

// Propagation returns middleware that extracts the incoming trace context
// from request headers, so route spans join the caller's trace. It uses the
// global propagator.
func Propagation() aior.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
