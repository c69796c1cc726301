package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Config controls logging and optional OTLP log export.
type Config struct {
	// Level is the minimum level of stdout logs and exported records.
	Level slog.Level
	// Format is the stdout format: "text" or "json".
	Format string
	// ServiceName and ServiceVersion describe the process in exported records.
	ServiceName    string
	ServiceVersion string
	// Export configures OTLP log export. Disabled by default.
	Export ExportConfig

	// Writer receives stdout logs. Defaults to os.Stdout.
	Writer io.Writer
}

// ExportConfig selects an OpenTelemetry log exporter.
type ExportConfig struct {
	Enabled bool
	// Protocol is "grpc", "http" or "stdout".
	Protocol string
	// Endpoint is host:port of the collector. Empty uses the exporter's default,
	// which honours OTEL_EXPORTER_OTLP_* variables.
	Endpoint string
	// Insecure disables TLS towards the collector.
	Insecure bool
}

// ShutdownFunc flushes and stops log export.
type ShutdownFunc func(context.Context) error

// Instrument installs the default slog logger and the W3C trace context
// propagator. With export enabled, records are also sent through the OpenTelemetry
// log SDK; the returned ShutdownFunc flushes them and must be called on exit.
func Instrument(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	handler, err := newStdoutHandler(writer, cfg.Level, cfg.Format)
	if err != nil {
		return nil, err
	}

	shutdown := func(context.Context) error { return nil }
	if cfg.Export.Enabled {
		provider, err := newLoggerProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		otelHandler := otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(provider))
		handler = slogmulti.Fanout(handler, otelHandler)
		shutdown = provider.Shutdown
	}

	slog.SetDefault(slog.New(newTraceContextHandler(handler)))
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return shutdown, nil
}

// newStdoutHandler creates a handler for human-readable logs.
func newStdoutHandler(w io.Writer, level slog.Level, logFormat string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(logFormat) {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text", "":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (expected: json, text)", logFormat)
	}
}

// newLoggerProvider builds an SDK provider exporting records at or above cfg.Level.
func newLoggerProvider(ctx context.Context, cfg Config) (*sdklog.LoggerProvider, error) {
	exporter, err := newExporter(ctx, cfg.Export)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create resource: %w", err), exporter.Shutdown(ctx))
	}

	processor := newSeverityProcessor(sdklog.NewBatchProcessor(exporter), cfg.Level)
	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(processor),
	), nil
}
