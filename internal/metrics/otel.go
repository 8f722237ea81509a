package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/actionsum/focusday/internal/config"
)

const (
	serviceName    = "focusday"
	serviceVersion = "0.1.0"
)

// OTel records sampler events as OpenTelemetry instruments.
type OTel struct {
	shutdown        func(context.Context) error
	ticks           metric.Int64Counter
	probeFailures   metric.Int64Counter
	sessionsFlushed metric.Int64Counter
	sessionsDropped metric.Int64Counter
	persistFailures metric.Int64Counter
	trackedSeconds  metric.Int64Counter
}

// NewExporter pushes metrics to an OTLP/gRPC collector.
func NewExporter(ctx context.Context, cfg config.MetricsConfig) (*OTel, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTLP endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return NewOTel(provider, provider.Shutdown)
}

// NewOTel creates the instruments on provider. shutdown may be nil.
func NewOTel(provider metric.MeterProvider, shutdown func(context.Context) error) (*OTel, error) {
	meter := provider.Meter(serviceName)
	o := &OTel{shutdown: shutdown}

	var err error
	if o.ticks, err = meter.Int64Counter("focusday_sampler_ticks_total",
		metric.WithDescription("Sampler ticks that received a probe result")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if o.probeFailures, err = meter.Int64Counter("focusday_probe_failures_total",
		metric.WithDescription("Probe calls that failed")); err != nil {
		return nil, fmt.Errorf("creating probe failures counter: %w", err)
	}
	if o.sessionsFlushed, err = meter.Int64Counter("focusday_sessions_flushed_total",
		metric.WithDescription("Sessions persisted to the day record store")); err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}
	if o.sessionsDropped, err = meter.Int64Counter("focusday_sessions_discarded_total",
		metric.WithDescription("Sessions shorter than the minimum duration")); err != nil {
		return nil, fmt.Errorf("creating discarded counter: %w", err)
	}
	if o.persistFailures, err = meter.Int64Counter("focusday_persist_failures_total",
		metric.WithDescription("Sessions the store failed to persist")); err != nil {
		return nil, fmt.Errorf("creating persist failures counter: %w", err)
	}
	if o.trackedSeconds, err = meter.Int64Counter("focusday_tracked_seconds_total",
		metric.WithDescription("Seconds attributed to persisted sessions"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating tracked seconds counter: %w", err)
	}

	return o, nil
}

func (o *OTel) Tick(ctx context.Context) { o.ticks.Add(ctx, 1) }

func (o *OTel) ProbeFailed(ctx context.Context) { o.probeFailures.Add(ctx, 1) }

func (o *OTel) SessionFlushed(ctx context.Context, app string, seconds int64) {
	attrs := metric.WithAttributes(attribute.String("app", app))
	o.sessionsFlushed.Add(ctx, 1, attrs)
	o.trackedSeconds.Add(ctx, seconds, attrs)
}

func (o *OTel) SessionDiscarded(ctx context.Context) { o.sessionsDropped.Add(ctx, 1) }

func (o *OTel) PersistFailed(ctx context.Context) { o.persistFailures.Add(ctx, 1) }

func (o *OTel) Shutdown(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	return o.shutdown(ctx)
}

var _ Recorder = (*OTel)(nil)
