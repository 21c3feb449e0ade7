package handlers

import (
	"errors"
	"net/http"

	contextutils "translateapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// StandardizeAppError sends a structured error response using AppError, localized by the
// request's Accept-Language header
func StandardizeAppError(c *gin.Context, err *contextutils.AppError) {
	_ = c.Error(err)
	c.JSON(mapErrorCodeToHTTPStatus(err.Code), err.ToJSONWithLocale(c.GetHeader("Accept-Language")))
}

// HandleAppError handles any error and sends the appropriate HTTP response
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if errors.As(err, &appErr) {
		StandardizeAppError(c, appErr)
		return
	}
	StandardizeAppError(c, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInternalError,
		contextutils.SeverityError, "Internal server error", err.Error(), err))
}

// mapErrorCodeToHTTPStatus maps AppError codes to appropriate HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	// 4xx Client Errors
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeValidationFailed, contextutils.ErrorCodeBadURL:
		return http.StatusBadRequest

	case contextutils.ErrorCodeTimeout:
		return http.StatusRequestTimeout

	// 5xx Server Errors
	case contextutils.ErrorCodeBadResponse, contextutils.ErrorCodeInvalidData, contextutils.ErrorCodeDecodeError:
		return http.StatusBadGateway

	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeClosed:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
