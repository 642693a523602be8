// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"log/slog"

	"agency/config"
	"agency/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
)

// Params holds the dependencies of the tracer provider.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Provider is the installed tracer provider; nil when tracing is off.
type Provider struct {
	*sdktrace.TracerProvider
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.TracerProvider != nil
}

// New exports spans over OTLP/gRPC when an endpoint is configured and leaves
// the global no-op provider in place otherwise. The provider is flushed and
// shut down with the application.
func New(params Params) (*Provider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	cfg := params.Config.Telemetry
	if cfg == nil || cfg.Endpoint == "" {
		params.Logger.Info("Tracing disabled")

		return &Provider{}, nil
	}

	tp, err := newTracerProvider(context.Background(), params.Config.Env.ServiceName, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.Wrap(tp.Shutdown(ctx), "failed to shut down tracer provider")
		},
	})

	params.Logger.Info("Tracing enabled", slog.String("endpoint", cfg.Endpoint))

	return &Provider{TracerProvider: tp}, nil
}

func newTracerProvider(ctx context.Context, serviceName string, cfg *config.TelemetryConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create otlp exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build telemetry resource")
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
