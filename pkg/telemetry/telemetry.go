// Package telemetry wires the OpenTelemetry metric pipeline. Metrics are
// exported over OTLP/gRPC when an endpoint is configured and dropped otherwise.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const PrefixWatchParty = "watchparty"

type ShutdownFunc func(context.Context) error

type Config struct {
	ServiceName    string
	Endpoint       string
	Insecure       bool
	ExportInterval time.Duration
	Timeout        time.Duration
}

// Init installs a global meter provider and returns its shutdown func.
func Init(ctx context.Context, cfg *Config, logger *slog.Logger) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		logger.InfoContext(ctx, "otel metrics export disabled")
		return func(context.Context) error { return nil }, nil
	}

	logger.InfoContext(ctx, "otel metrics export enabled",
		"endpoint", cfg.Endpoint,
		"service_name", cfg.ServiceName,
		"interval", cfg.ExportInterval,
	)

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()),
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(cfg.ExportInterval),
		)),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}
