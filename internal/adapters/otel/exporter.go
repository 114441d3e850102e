package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

const (
	serviceName    = "abtest"
	serviceVersion = "1.0.0"
)

// ErrNotConfigured is returned when the exporter is disabled or has no endpoint.
var ErrNotConfigured = errors.New("OTEL exporter is disabled or endpoint not configured")

// Sink records tracked events and assignments as OTEL counters.
type Sink struct {
	provider         *sdkmetric.MeterProvider
	eventsTotal      metric.Int64Counter
	assignmentsTotal metric.Int64Counter
}

// NewSink creates a sink that pushes metrics to an OTLP/gRPC collector.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, ErrNotConfigured
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
			attribute.String("service.instance.id", uuid.NewString()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	s, err := NewSinkWithReader(sdkmetric.NewPeriodicReader(exp), res)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(s.provider)
	return s, nil
}

// NewSinkWithReader builds a sink over an arbitrary metric reader.
// res may be nil.
func NewSinkWithReader(reader sdkmetric.Reader, res *resource.Resource) (*Sink, error) {
	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}
	provider := sdkmetric.NewMeterProvider(opts...)
	meter := provider.Meter(serviceName)

	eventsTotal, err := meter.Int64Counter(
		"abtest_events_total",
		metric.WithDescription("Tracked experiment events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	assignmentsTotal, err := meter.Int64Counter(
		"abtest_assignments_total",
		metric.WithDescription("Fresh variant assignments"),
		metric.WithUnit("{assignment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignments counter: %w", err)
	}

	return &Sink{
		provider:         provider,
		eventsTotal:      eventsTotal,
		assignmentsTotal: assignmentsTotal,
	}, nil
}

// Emit counts a tracked event. The payload is not exported; only the
// experiment, variant and event name become attributes.
func (s *Sink) Emit(ctx context.Context, ev domain.TrackedEvent) {
	s.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("experiment", ev.Experiment),
		attribute.String("variant", string(ev.Variant)),
		attribute.String("event", ev.Event),
	))
}

// Assigned counts a fresh assignment.
func (s *Sink) Assigned(ctx context.Context, experiment string, v domain.Variant) {
	s.assignmentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("experiment", experiment),
		attribute.String("variant", string(v)),
	))
}

// Close shuts down the provider and flushes any pending metrics.
func (s *Sink) Close(ctx context.Context) error {
	return s.provider.Shutdown(ctx)
}
