package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClientMetrics records request counts, durations and errors for an external service client.
type ClientMetrics struct {
	provider string
	count    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewClientMetrics creates the instruments under "<prefix>.request.*".
// It returns nil if any instrument cannot be created; a nil *ClientMetrics records nothing.
func NewClientMetrics(scope, prefix, provider string) *ClientMetrics {
	meter := Meter(scope)
	count, err := meter.Int64Counter(prefix+".request.count",
		metric.WithDescription("Number of requests"))
	if err != nil {
		return nil
	}
	duration, err := meter.Float64Histogram(prefix+".request.duration",
		metric.WithDescription("Request duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil
	}
	errs, err := meter.Int64Counter(prefix+".request.errors",
		metric.WithDescription("Number of failed requests"))
	if err != nil {
		return nil
	}
	return &ClientMetrics{provider: provider, count: count, duration: duration, errors: errs}
}

// Record adds one request observation.
func (m *ClientMetrics) Record(ctx context.Context, model string, statusCode int, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", m.provider),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}
	m.count.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// CacheMetrics counts cache hits and misses.
type CacheMetrics struct {
	backend string
	hits    metric.Int64Counter
	misses  metric.Int64Counter
}

// NewCacheMetrics creates hit/miss counters tagged with the backend name.
func NewCacheMetrics(backend string) *CacheMetrics {
	meter := Meter("embedcache")
	hits, err := meter.Int64Counter("embedding.cache.hit.count",
		metric.WithDescription("Number of embedding cache hits"))
	if err != nil {
		return nil
	}
	misses, err := meter.Int64Counter("embedding.cache.miss.count",
		metric.WithDescription("Number of embedding cache misses"))
	if err != nil {
		return nil
	}
	return &CacheMetrics{backend: backend, hits: hits, misses: misses}
}

// Hit records n cache hits.
func (m *CacheMetrics) Hit(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.hits.Add(ctx, int64(n), metric.WithAttributes(attribute.String("cache.backend", m.backend)))
}

// Miss records n cache misses.
func (m *CacheMetrics) Miss(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.misses.Add(ctx, int64(n), metric.WithAttributes(attribute.String("cache.backend", m.backend)))
}
