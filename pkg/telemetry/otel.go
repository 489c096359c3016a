// Package telemetry wires OpenTelemetry OTLP gRPC trace export. The actor
// fetcher creates spans through the global tracer provider; Init installs
// a real provider when telemetry is enabled.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/openearth/openclimate/pkg/config"
)

// OTLPConfig configures the OTLP gRPC exporter.
type OTLPConfig struct {
	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317")
	Endpoint string

	ServiceName    string
	ServiceVersion string

	// InsecureTLS disables TLS for the gRPC connection (use for local dev)
	InsecureTLS bool

	// Headers are sent with each export (e.g., auth tokens)
	Headers map[string]string

	BatchTimeout  time.Duration
	MaxBatchSize  int
	MaxQueueSize  int
	ExportTimeout time.Duration

	// SamplingRatio is the fraction of traces to sample (0.0 to 1.0)
	SamplingRatio float64
}

// DefaultOTLPConfig returns defaults for serviceName.
func DefaultOTLPConfig(serviceName string) OTLPConfig {
	return OTLPConfig{
		Endpoint:       "localhost:4317",
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		InsecureTLS:    true,
		BatchTimeout:   5 * time.Second,
		MaxBatchSize:   512,
		MaxQueueSize:   2048,
		ExportTimeout:  30 * time.Second,
		SamplingRatio:  1.0,
	}
}

// FromConfig builds an OTLPConfig from the telemetry section of the
// application config.
func FromConfig(c config.TelemetryConfig, version string) OTLPConfig {
	cfg := DefaultOTLPConfig(c.ServiceName)
	if cfg.ServiceName == "" {
		cfg.ServiceName = "openclimate"
	}
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	cfg.InsecureTLS = c.Insecure
	cfg.SamplingRatio = c.SamplingRatio
	return cfg
}

// Sampler maps a ratio onto a parent-based sampler.
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// NewProvider builds a tracer provider that batches spans into exporter.
func NewProvider(exporter sdktrace.SpanExporter, cfg OTLPConfig) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var bspOpts []sdktrace.BatchSpanProcessorOption
	if cfg.BatchTimeout > 0 {
		bspOpts = append(bspOpts, sdktrace.WithBatchTimeout(cfg.BatchTimeout))
	}
	if cfg.MaxBatchSize > 0 {
		bspOpts = append(bspOpts, sdktrace.WithMaxExportBatchSize(cfg.MaxBatchSize))
	}
	if cfg.MaxQueueSize > 0 {
		bspOpts = append(bspOpts, sdktrace.WithMaxQueueSize(cfg.MaxQueueSize))
	}
	if cfg.ExportTimeout > 0 {
		bspOpts = append(bspOpts, sdktrace.WithExportTimeout(cfg.ExportTimeout))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, bspOpts...),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SamplingRatio)),
	), nil
}

// Install sets tp as the global tracer provider along with the W3C trace
// context and baggage propagators used by the HTTP transport.
func Install(tp *sdktrace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Init dials the OTLP endpoint, installs the provider globally and returns
// a shutdown function that flushes pending spans.
func Init(ctx context.Context, cfg OTLPConfig) (func(context.Context) error, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.ExportTimeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.ExportTimeout))
	}
	if cfg.InsecureTLS {
		opts = append(opts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp, err := NewProvider(exporter, cfg)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, err
	}
	Install(tp)
	return tp.Shutdown, nil
}

// Noop is the shutdown function returned when telemetry is disabled.
func Noop(context.Context) error { return nil }

// Setup initializes tracing when the application config enables it.
func Setup(ctx context.Context, c config.TelemetryConfig, version string) (func(context.Context) error, error) {
	if !c.Enabled {
		return Noop, nil
	}
	return Init(ctx, FromConfig(c, version))
}
