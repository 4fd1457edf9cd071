// Package observability wraps OpenTelemetry tracing and metrics for
// notification sends.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/feishu-notifier/pkg/config"
)

const instrumentationName = "github.com/kart-io/feishu-notifier"

// TelemetryProvider provides observability features. A nil provider is a no-op.
type TelemetryProvider struct {
	config        config.TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	notificationsSent   metric.Int64Counter
	notificationsFailed metric.Int64Counter
	sendDuration        metric.Float64Histogram
}

// NewTelemetryProvider creates a provider. When cfg is disabled it uses the
// global (no-op by default) tracer and meter and exports nothing.
func NewTelemetryProvider(cfg config.TelemetryConfig) (*TelemetryProvider, error) {
	tp := &TelemetryProvider{config: cfg}

	if !cfg.Enabled {
		tp.tracer = otel.Tracer(instrumentationName)
		tp.meter = otel.Meter(instrumentationName)
		return tp, nil
	}

	if err := tp.initTracing(); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if err := tp.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return tp, nil
}

// NewTelemetryProviderWithTracerProvider uses an existing SDK tracer provider
// instead of an OTLP exporter. The global provider is left untouched.
func NewTelemetryProviderWithTracerProvider(cfg config.TelemetryConfig, provider *sdktrace.TracerProvider) (*TelemetryProvider, error) {
	tp := &TelemetryProvider{config: cfg, traceProvider: provider}
	tp.tracer = provider.Tracer(instrumentationName)
	if err := tp.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return tp, nil
}

func (tp *TelemetryProvider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint),
		otlptracehttp.WithHeaders(tp.config.OTLPHeaders),
	}
	if tp.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(tp.config.SampleRate)),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp.tracer = tp.traceProvider.Tracer(instrumentationName,
		trace.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

func (tp *TelemetryProvider) initMetrics() error {
	tp.meter = otel.Meter(instrumentationName,
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error
	tp.notificationsSent, err = tp.meter.Int64Counter(
		"feishu_notifications_sent_total",
		metric.WithDescription("Total number of notifications accepted by Feishu"),
	)
	if err != nil {
		return fmt.Errorf("create sent counter: %w", err)
	}

	tp.notificationsFailed, err = tp.meter.Int64Counter(
		"feishu_notifications_failed_total",
		metric.WithDescription("Total number of notifications that failed or were rejected"),
	)
	if err != nil {
		return fmt.Errorf("create failed counter: %w", err)
	}

	tp.sendDuration, err = tp.meter.Float64Histogram(
		"feishu_send_duration_seconds",
		metric.WithDescription("Duration of webhook send operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}
	return nil
}

// TraceSend starts a span for one webhook send.
func (tp *TelemetryProvider) TraceSend(ctx context.Context, platform string) (context.Context, trace.Span) {
	if tp == nil || tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tp.tracer.Start(ctx, platform+".send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("notify.platform", platform)),
	)
}

// RecordSent records a successful send
func (tp *TelemetryProvider) RecordSent(ctx context.Context, platform string, duration time.Duration) {
	if tp == nil {
		return
	}
	if tp.notificationsSent != nil {
		tp.notificationsSent.Add(ctx, 1, metric.WithAttributes(attribute.String("platform", platform)))
	}
	tp.recordDuration(ctx, platform, "success", duration)
}

// RecordFailed records a failed or rejected send
func (tp *TelemetryProvider) RecordFailed(ctx context.Context, platform string, duration time.Duration, errorType string) {
	if tp == nil {
		return
	}
	if tp.notificationsFailed != nil {
		tp.notificationsFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("error_type", errorType),
		))
	}
	tp.recordDuration(ctx, platform, "error", duration)
}

func (tp *TelemetryProvider) recordDuration(ctx context.Context, platform, status string, duration time.Duration) {
	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("status", status),
		))
	}
}

// SetSpanError sets an error on the span
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as successful
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown flushes and stops the trace provider, if one was created.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp == nil || tp.traceProvider == nil {
		return nil
	}
	return tp.traceProvider.Shutdown(ctx)
}
