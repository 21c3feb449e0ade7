package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"translateapp/internal/config"
	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries a per-request id so API logs can be correlated with ours
const RequestIDHeader = "X-Request-ID"

// translationResultSchema is the shape every successful API response must have
const translationResultSchema = `{
	"type": "object",
	"required": ["source-language", "source-text", "destination-language", "destination-text"],
	"properties": {
		"source-language": {"type": "string"},
		"source-text": {"type": "string"},
		"destination-language": {"type": "string"},
		"destination-text": {"type": "string"}
	}
}`

var loadResultSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(translationResultSchema))
})

// HTTPTranslationClient calls the remote translation API:
// GET {baseURL}/translate?sl=..&dl=..&text=..
type HTTPTranslationClient struct {
	baseURL          string
	httpClient       *http.Client
	maxResponseBytes int64
	logger           *observability.Logger
}

// NewHTTPTranslationClient creates a client for the API configured in cfg
func NewHTTPTranslationClient(cfg *config.TranslationConfig, logger *observability.Logger) *HTTPTranslationClient {
	return NewHTTPTranslationClientWithHTTPClient(cfg, &http.Client{
		Timeout: cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}, logger)
}

// NewHTTPTranslationClientWithHTTPClient creates a client that sends requests through httpClient (for testing)
func NewHTTPTranslationClientWithHTTPClient(cfg *config.TranslationConfig, httpClient *http.Client, logger *observability.Logger) *HTTPTranslationClient {
	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxResponseBytes
	}
	return &HTTPTranslationClient{
		baseURL:          cfg.BaseURL,
		httpClient:       httpClient,
		maxResponseBytes: maxBytes,
		logger:           logger,
	}
}

// Translate implements serviceinterfaces.TranslationClient
func (c *HTTPTranslationClient) Translate(ctx context.Context, req serviceinterfaces.TranslationRequest) (result *serviceinterfaces.TranslationResult, err error) {
	ctx, span := observability.TraceTranslationFunction(ctx, "Translate",
		observability.AttributeSourceLanguage(req.SourceLanguage),
		observability.AttributeTargetLanguage(req.DestinationLanguage),
		observability.AttributeTextLength(req.Text),
	)
	defer observability.FinishSpan(span, &err)

	endpoint, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("translation.request_id", requestID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Failed to create translation request", endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug(ctx, "Sending translation request", map[string]interface{}{
		"request_id":  requestID,
		"source":      req.SourceLanguage,
		"destination": req.DestinationLanguage,
		"text_length": len(req.Text),
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Translation request failed", requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Translation API returned an error status", fmt.Sprintf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Failed to read translation response", requestID, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidData, contextutils.SeverityWarn,
			"Translation response is empty", requestID)
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeDecodeError, contextutils.SeverityError,
			"Translation response is too large", fmt.Sprintf("limit %d bytes", c.maxResponseBytes))
	}

	return decodeTranslationResult(body)
}

// buildURL returns the request URL for req, or a BAD_URL error
func (c *HTTPTranslationClient) buildURL(req serviceinterfaces.TranslationRequest) (string, error) {
	if req.DestinationLanguage == "" {
		return "", contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Destination language is required", "dl")
	}
	if req.Text == "" {
		return "", contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Text is required", "text")
	}

	if !contextutils.IsValidURL(c.baseURL) {
		return "", contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Invalid translation API base URL", c.baseURL)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Host == "" {
		return "", contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Invalid translation API base URL", c.baseURL, err)
	}

	endpoint := base.JoinPath("translate")
	query := url.Values{}
	if req.SourceLanguage != "" {
		query.Set("sl", req.SourceLanguage)
	}
	query.Set("dl", req.DestinationLanguage)
	query.Set("text", req.Text)
	endpoint.RawQuery = query.Encode()

	return endpoint.String(), nil
}

// decodeTranslationResult validates body against the result schema and decodes it
func decodeTranslationResult(body []byte) (*serviceinterfaces.TranslationResult, error) {
	schema, err := loadResultSchema()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load translation result schema")
	}

	validation, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDecodeError, contextutils.SeverityError,
			"Translation response is not valid JSON", "", err)
	}
	if !validation.Valid() {
		var messages []string
		for _, e := range validation.Errors() {
			messages = append(messages, e.String())
		}
		return nil, contextutils.NewAppError(contextutils.ErrorCodeDecodeError, contextutils.SeverityError,
			"Translation response has an unexpected shape", strings.Join(messages, "; "))
	}

	var result serviceinterfaces.TranslationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDecodeError, contextutils.SeverityError,
			"Failed to decode translation response", "", err)
	}
	return &result, nil
}

// NoopTranslationClient echoes the input text back without calling any API
type NoopTranslationClient struct{}

// NewNoopTranslationClient creates a NoopTranslationClient
func NewNoopTranslationClient() *NoopTranslationClient {
	return &NoopTranslationClient{}
}

// Translate implements serviceinterfaces.TranslationClient
func (c *NoopTranslationClient) Translate(ctx context.Context, req serviceinterfaces.TranslationRequest) (*serviceinterfaces.TranslationResult, error) {
	if req.DestinationLanguage == "" || req.Text == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Destination language and text are required", "")
	}
	if err := ctx.Err(); err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Translation request cancelled", "", err)
	}
	return &serviceinterfaces.TranslationResult{
		SourceLanguage:      req.SourceLanguage,
		SourceText:          req.Text,
		DestinationLanguage: req.DestinationLanguage,
		DestinationText:     req.Text,
	}, nil
}

// NewTranslationClient builds the client selected by cfg.Provider
func NewTranslationClient(cfg *config.TranslationConfig, logger *observability.Logger) (serviceinterfaces.TranslationClient, error) {
	switch cfg.Provider {
	case "", "http":
		return NewHTTPTranslationClient(cfg, logger), nil
	case "noop":
		return NewNoopTranslationClient(), nil
	default:
		return nil, contextutils.NewAppError(contextutils.ErrorCodeConfigInvalid, contextutils.SeverityError,
			"Unsupported translation provider", cfg.Provider)
	}
}

var (
	_ serviceinterfaces.TranslationClient = (*HTTPTranslationClient)(nil)
	_ serviceinterfaces.TranslationClient = (*NoopTranslationClient)(nil)
)
