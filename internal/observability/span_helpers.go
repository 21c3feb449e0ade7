package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	contextutils "translateapp/internal/utils"
)

// FinishSpan ends a span and records any error pointed to by errPtr.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	if errPtr != nil && *errPtr != nil {
		err := *errPtr
		span.RecordError(err, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.String("error.code", string(contextutils.GetErrorCode(err))),
			attribute.Bool("error.retryable", contextutils.IsRetryable(err)),
		)
	}
	span.End()
}
