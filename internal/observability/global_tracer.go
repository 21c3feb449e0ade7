package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "translateapp"

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer(instrumentationName)
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(instrumentationName)
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceTranslationFunction starts a new span for a translation client function.
func TraceTranslationFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "translation", functionName, attributes...)
}

// TraceOrchestratorFunction starts a new span for an orchestrator function.
func TraceOrchestratorFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "orchestrator", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// AttributeSourceLanguage returns a tracing attribute for the source language code.
func AttributeSourceLanguage(lang string) attribute.KeyValue {
	return attribute.String("translation.source_language", lang)
}

// AttributeTargetLanguage returns a tracing attribute for the target language code.
func AttributeTargetLanguage(lang string) attribute.KeyValue {
	return attribute.String("translation.target_language", lang)
}

// AttributeTextLength returns a tracing attribute for the length of the text being translated.
func AttributeTextLength(text string) attribute.KeyValue {
	return attribute.Int("translation.text_length", len(text))
}

// AttributeRequestToken returns a tracing attribute for an orchestrator request token.
func AttributeRequestToken(token uint64) attribute.KeyValue {
	return attribute.Int64("translation.request_token", int64(token))
}
