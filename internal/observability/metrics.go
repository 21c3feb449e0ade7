package observability

import (
	"context"
	"time"

	"translateapp/internal/config"
	contextutils "translateapp/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otel resource: %w", err)
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// TranslationMetrics records orchestrator and client activity
type TranslationMetrics struct {
	requests      otelmetric.Int64Counter
	staleResults  otelmetric.Int64Counter
	errors        otelmetric.Int64Counter
	duration      otelmetric.Float64Histogram
	debounceFires otelmetric.Int64Counter
}

// NewTranslationMetrics creates the translation instruments on the given meter provider.
// A nil provider uses the global one, which is a no-op until SetupObservability installs a real provider.
func NewTranslationMetrics(mp otelmetric.MeterProvider) (result0 *TranslationMetrics, err error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	m := &TranslationMetrics{}
	if m.requests, err = meter.Int64Counter("translation.requests",
		otelmetric.WithDescription("Translation requests sent to the client")); err != nil {
		return nil, err
	}
	if m.staleResults, err = meter.Int64Counter("translation.stale_results",
		otelmetric.WithDescription("Translation outcomes discarded because a newer request superseded them")); err != nil {
		return nil, err
	}
	if m.errors, err = meter.Int64Counter("translation.errors",
		otelmetric.WithDescription("Failed translation requests by error code")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("translation.duration",
		otelmetric.WithDescription("Translation request latency"),
		otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.debounceFires, err = meter.Int64Counter("translation.debounce_fires",
		otelmetric.WithDescription("Debounce windows that elapsed and issued a request")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRequest counts an issued request
func (m *TranslationMetrics) RecordRequest(ctx context.Context, source, target string) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("source_language", source),
		attribute.String("target_language", target),
	))
}

// RecordDebounceFire counts an elapsed debounce window
func (m *TranslationMetrics) RecordDebounceFire(ctx context.Context) {
	if m == nil {
		return
	}
	m.debounceFires.Add(ctx, 1)
}

// RecordStale counts a discarded outcome
func (m *TranslationMetrics) RecordStale(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleResults.Add(ctx, 1)
}

// RecordOutcome records the latency of an accepted outcome and, for failures, its error code
func (m *TranslationMetrics) RecordOutcome(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		m.errors.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("error.code", string(contextutils.GetErrorCode(err))),
		))
	}
	m.duration.Record(ctx, elapsed.Seconds(), otelmetric.WithAttributes(attribute.String("status", status)))
}
