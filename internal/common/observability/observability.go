package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the meter and tracer providers for the process.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	responseCounter  otelmetric.Int64Counter
	responseDuration otelmetric.Float64Histogram
	contextHits      otelmetric.Int64Counter
}

// New registers a prometheus-backed meter provider and an in-process tracer provider.
// On exporter failure the returned value records nothing.
func New(serviceName string) (*Observability, error) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	o := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		o.bindInstruments(noop.NewMeterProvider().Meter(serviceName))
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	o.meterProvider = provider
	o.bindInstruments(provider.Meter(serviceName))
	return o, nil
}

// NewNoop returns an Observability that records nothing, for tests.
func NewNoop() *Observability {
	o := &Observability{tracer: trace.NewNoopTracerProvider().Tracer("noop")}
	o.bindInstruments(noop.NewMeterProvider().Meter("noop"))
	return o
}

func (o *Observability) bindInstruments(meter otelmetric.Meter) {
	o.responseCounter, _ = meter.Int64Counter(
		"chat.responses",
		otelmetric.WithDescription("Number of chat replies generated"),
	)
	o.responseDuration, _ = meter.Float64Histogram(
		"chat.response.duration",
		otelmetric.WithDescription("Chat reply generation duration"),
		otelmetric.WithUnit("ms"),
	)
	o.contextHits, _ = meter.Int64Counter(
		"chat.context.lookups",
		otelmetric.WithDescription("Conversation context lookups by outcome"),
	)
}

// StartSpan starts a span named name under ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordResponse(ctx context.Context, intent, responseType string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("type", responseType),
	)
	if o.responseCounter != nil {
		o.responseCounter.Add(ctx, 1, attrs)
	}
	if o.responseDuration != nil {
		o.responseDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordContextLookup(ctx context.Context, hit bool) {
	if o.contextHits == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	o.contextHits.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
