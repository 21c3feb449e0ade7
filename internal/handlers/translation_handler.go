package handlers

import (
	"net/http"

	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// TranslationHandler serves the translation API contract: GET /translate?sl=&dl=&text=
type TranslationHandler struct {
	client serviceinterfaces.TranslationClient
	logger *observability.Logger
}

// NewTranslationHandler creates a new TranslationHandler instance
func NewTranslationHandler(client serviceinterfaces.TranslationClient, logger *observability.Logger) *TranslationHandler {
	return &TranslationHandler{
		client: client,
		logger: logger,
	}
}

// translateQuery binds the query parameters of GET /translate
type translateQuery struct {
	SourceLanguage      string `form:"sl"`
	DestinationLanguage string `form:"dl"`
	Text                string `form:"text"`
}

// Translate handles GET /translate
func (h *TranslationHandler) Translate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "translate")
	var err error
	defer observability.FinishSpan(span, &err)

	var query translateQuery
	if err = c.ShouldBindQuery(&query); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn, "Invalid query parameters", err.Error(), err))
		return
	}

	req := serviceinterfaces.TranslationRequest{
		SourceLanguage:      query.SourceLanguage,
		DestinationLanguage: query.DestinationLanguage,
		Text:                query.Text,
	}
	span.SetAttributes(
		observability.AttributeSourceLanguage(req.SourceLanguage),
		observability.AttributeTargetLanguage(req.DestinationLanguage),
		observability.AttributeTextLength(req.Text),
	)

	if err = contextutils.ValidateStruct(req); err != nil {
		h.logger.Warn(ctx, "Translation request validation failed", map[string]interface{}{"error": err.Error()})
		HandleAppError(c, contextutils.WrapError(err, "dl and text are required"))
		return
	}

	result, err := h.client.Translate(ctx, req)
	if err != nil {
		fields := map[string]interface{}{
			"source":      req.SourceLanguage,
			"destination": req.DestinationLanguage,
		}
		if contextutils.GetErrorSeverity(err) == contextutils.SeverityWarn {
			fields["error"] = err.Error()
			h.logger.Warn(ctx, "Translation failed", fields)
		} else {
			h.logger.Error(ctx, "Translation failed", err, fields)
		}
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
