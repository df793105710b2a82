// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observability owns the OTel meter and tracer providers for one process.
// Metrics are exported through the default Prometheus registry, so they show
// up on the same /metrics endpoint as the promauto collectors.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	queryCounter  otelmetric.Int64Counter
	queryDuration otelmetric.Float64Histogram
	toolCounter   otelmetric.Int64Counter
}

func New(serviceName string, log *zap.Logger) *Observability {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	o := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter, otel metrics disabled", zap.Error(err))
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)
	o.meterProvider = provider

	meter := provider.Meter(serviceName)

	o.queryCounter, _ = meter.Int64Counter(
		"hr.queries.answered",
		otelmetric.WithDescription("Number of assistant queries answered"),
	)
	o.queryDuration, _ = meter.Float64Histogram(
		"hr.queries.duration",
		otelmetric.WithDescription("End-to-end query handling duration"),
		otelmetric.WithUnit("ms"),
	)
	o.toolCounter, _ = meter.Int64Counter(
		"hr.tools.invoked",
		otelmetric.WithDescription("Number of tool invocations"),
	)

	return o
}

// StartSpan starts a span on the process tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("hr-assistant")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordQuery(ctx context.Context, mode, intent string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("intent", intent),
	)
	if o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, attrs)
	}
	if o.queryDuration != nil {
		o.queryDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordToolCall(ctx context.Context, tool, status string) {
	if o.toolCounter != nil {
		o.toolCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
