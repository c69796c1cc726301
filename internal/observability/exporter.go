package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Export protocols.
const (
	ProtocolGRPC   = "grpc"
	ProtocolHTTP   = "http"
	ProtocolStdout = "stdout"
)

// newExporter creates the log exporter for cfg.Protocol.
func newExporter(ctx context.Context, cfg ExportConfig) (sdklog.Exporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case ProtocolGRPC, "":
		var opts []otlploggrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		exporter, err := otlploggrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp grpc log exporter: %w", err)
		}
		return exporter, nil

	case ProtocolHTTP:
		var opts []otlploghttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exporter, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp http log exporter: %w", err)
		}
		return exporter, nil

	case ProtocolStdout:
		// stderr keeps exported records apart from the stdout handler's output
		exporter, err := stdoutlog.New(stdoutlog.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("create stdout log exporter: %w", err)
		}
		return exporter, nil

	default:
		return nil, fmt.Errorf("unsupported export protocol %q (expected: grpc, http, stdout)", cfg.Protocol)
	}
}

// levelSeverity adapts a slog level to minsev's Severitier.
type levelSeverity struct {
	level slog.Level
}

// Severity implements minsev.Severitier.
func (l levelSeverity) Severity() otellog.Severity {
	switch {
	case l.level >= slog.LevelError:
		return otellog.SeverityError
	case l.level >= slog.LevelWarn:
		return otellog.SeverityWarn
	case l.level >= slog.LevelInfo:
		return otellog.SeverityInfo
	default:
		return otellog.SeverityDebug
	}
}

// newSeverityProcessor drops records below level before they reach downstream.
func newSeverityProcessor(downstream sdklog.Processor, level slog.Level) sdklog.Processor {
	return minsev.NewLogProcessor(downstream, levelSeverity{level: level})
}
