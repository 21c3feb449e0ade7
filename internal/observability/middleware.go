package observability

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	contextutils "translateapp/internal/utils"
)

// GinMiddleware creates OpenTelemetry middleware for Gin HTTP requests
func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// ErrorAttributesMiddleware marks the request span as failed for 4xx/5xx responses and
// attaches the AppError code when a handler reported one through c.Error.
// It must run after GinMiddleware so the span is already in the request context.
func ErrorAttributesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		statusCode := c.Writer.Status()
		if statusCode < 400 {
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		severity := determineErrorSeverity(statusCode, c.Errors)

		errorMsg := "client error"
		if statusCode >= 500 {
			errorMsg = "server error"
		}

		var appErr *contextutils.AppError
		for _, ginErr := range c.Errors {
			if errors.As(ginErr.Err, &appErr) {
				errorMsg = appErr.Message
				break
			}
			errorMsg = ginErr.Error()
		}

		span.RecordError(errors.New(errorMsg))
		span.SetStatus(codes.Error, errorMsg)
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", c.Request.URL.Path),
			attribute.String("error.handler", c.HandlerName()),
			attribute.String("error.severity", severity),
		)
		if appErr != nil {
			span.SetAttributes(
				attribute.String("error.code", string(appErr.Code)),
				attribute.Bool("error.retryable", contextutils.IsRetryable(appErr)),
			)
		}
		if statusCode >= 500 {
			span.SetAttributes(attribute.Bool("error.server_error", true))
		}
	}
}

// determineErrorSeverity determines the severity level based on status code and error types
func determineErrorSeverity(statusCode int, ginErrors []*gin.Error) string {
	var appErr *contextutils.AppError
	for _, err := range ginErrors {
		if errors.As(err.Err, &appErr) {
			return string(appErr.Severity)
		}
	}

	switch {
	case statusCode >= 500:
		return string(contextutils.SeverityError)
	case statusCode >= 400:
		return string(contextutils.SeverityWarn)
	default:
		return string(contextutils.SeverityInfo)
	}
}
