package observability

import (
	"context"
	"errors"
	"os"

	"translateapp/internal/config"

	autosdk "go.opentelemetry.io/auto/sdk"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SetupObservability initializes tracing, metrics, and logging for a service
func SetupObservability(cfg *config.OpenTelemetryConfig, serviceName string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	return SetupObservabilityWithLevel(cfg, serviceName, "info")
}

// SetupObservabilityWithLevel is SetupObservability with an explicit log level such as "debug"
func SetupObservabilityWithLevel(cfg *config.OpenTelemetryConfig, serviceName, logLevel string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	if serviceName != "" {
		cfg.ServiceName = serviceName
	}

	var tp trace.TracerProvider
	var mp *metric.MeterProvider

	if err := os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName); err != nil {
		return nil, nil, nil, err
	}
	if err := os.Setenv("OTEL_SERVICE_VERSION", cfg.ServiceVersion); err != nil {
		return nil, nil, nil, err
	}

	logger := NewLoggerWithLevel(cfg, ParseLevel(logLevel))

	if cfg.EnableTracing {
		if cfg.UseAutoSDK {
			tp = autosdk.TracerProvider()
			logger.Info(context.Background(), "Tracing enabled with Auto SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		} else {
			tp, err = InitStandardTracing(cfg)
			if err != nil {
				return nil, nil, logger, err
			}
			logger.Info(context.Background(), "Tracing enabled with standard SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		}
		otel.SetTracerProvider(tp)

		if err := InitTracing(cfg); err != nil {
			return nil, nil, logger, err
		}

		InitGlobalTracer()
	}

	if cfg.EnableMetrics {
		mp, err = InitMetrics(cfg)
		if err != nil {
			return tp, nil, logger, err
		}
		otel.SetMeterProvider(mp)
	}

	return tp, mp, logger, nil
}

// Shutdown flushes and stops the providers returned by SetupObservability
func Shutdown(ctx context.Context, tp trace.TracerProvider, mp *metric.MeterProvider, logger *Logger) error {
	var errs []error
	if sdkTP, ok := tp.(*sdktrace.TracerProvider); ok {
		errs = append(errs, sdkTP.Shutdown(ctx))
	}
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	if logger != nil {
		// stderr sync fails with EINVAL on some platforms and is not worth reporting
		_ = logger.Sync()
	}
	return errors.Join(errs...)
}
