package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"translateapp/internal/config"
	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResultBody = `{"source-language":"en","source-text":"hello","destination-language":"ru","destination-text":"привет"}`

func newTestHTTPClient(t *testing.T, baseURL string) *HTTPTranslationClient {
	t.Helper()
	cfg := &config.TranslationConfig{
		BaseURL:          baseURL,
		Timeout:          time.Second,
		MaxResponseBytes: 1024,
	}
	return NewHTTPTranslationClient(cfg, observability.NewNopLogger())
}

func newAPIServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTranslationClient_Success(t *testing.T) {
	var gotPath, gotRequestID string
	var gotQuery map[string][]string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validResultBody))
	})

	client := newTestHTTPClient(t, srv.URL)
	result, err := client.Translate(context.Background(), serviceinterfaces.TranslationRequest{
		SourceLanguage:      "en",
		DestinationLanguage: "ru",
		Text:                "hello & goodbye",
	})
	require.NoError(t, err)

	assert.Equal(t, &serviceinterfaces.TranslationResult{
		SourceLanguage:      "en",
		SourceText:          "hello",
		DestinationLanguage: "ru",
		DestinationText:     "привет",
	}, result)
	assert.Equal(t, "/translate", gotPath)
	assert.Equal(t, []string{"en"}, gotQuery["sl"])
	assert.Equal(t, []string{"ru"}, gotQuery["dl"])
	assert.Equal(t, []string{"hello & goodbye"}, gotQuery["text"])

	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestHTTPTranslationClient_OmitsEmptySourceLanguage(t *testing.T) {
	var rawQuery string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(validResultBody))
	})

	_, err := newTestHTTPClient(t, srv.URL).Translate(context.Background(), serviceinterfaces.TranslationRequest{
		DestinationLanguage: "ru",
		Text:                "hello",
	})
	require.NoError(t, err)
	assert.NotContains(t, rawQuery, "sl=")
	assert.Contains(t, rawQuery, "dl=ru")
}

func TestHTTPTranslationClient_BaseURLWithPath(t *testing.T) {
	var gotPath string
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(validResultBody))
	})

	_, err := newTestHTTPClient(t, srv.URL+"/api/").Translate(context.Background(), serviceinterfaces.TranslationRequest{
		DestinationLanguage: "ru",
		Text:                "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/translate", gotPath)
}

func TestHTTPTranslationClient_Errors(t *testing.T) {
	okRequest := serviceinterfaces.TranslationRequest{SourceLanguage: "en", DestinationLanguage: "ru", Text: "hello"}

	tests := []struct {
		name     string
		status   int
		body     string
		req      serviceinterfaces.TranslationRequest
		expected *contextutils.AppError
	}{
		{"missing destination", http.StatusOK, validResultBody, serviceinterfaces.TranslationRequest{Text: "hello"}, contextutils.ErrBadURL},
		{"missing text", http.StatusOK, validResultBody, serviceinterfaces.TranslationRequest{DestinationLanguage: "ru"}, contextutils.ErrBadURL},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, okRequest, contextutils.ErrBadResponse},
		{"not found", http.StatusNotFound, "", okRequest, contextutils.ErrBadResponse},
		{"empty body", http.StatusOK, "", okRequest, contextutils.ErrInvalidData},
		{"whitespace body", http.StatusOK, "  \n", okRequest, contextutils.ErrInvalidData},
		{"not json", http.StatusOK, "<html>maintenance</html>", okRequest, contextutils.ErrDecodeError},
		{"missing key", http.StatusOK, `{"source-language":"en","source-text":"hello","destination-language":"ru"}`, okRequest, contextutils.ErrDecodeError},
		{"wrong type", http.StatusOK, `{"source-language":"en","source-text":"hello","destination-language":"ru","destination-text":5}`, okRequest, contextutils.ErrDecodeError},
		{"json array", http.StatusOK, `[]`, okRequest, contextutils.ErrDecodeError},
		{"too large", http.StatusOK, `{"destination-text":"` + strings.Repeat("x", 2048) + `"}`, okRequest, contextutils.ErrDecodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPIServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := newTestHTTPClient(t, srv.URL).Translate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.expected)
			assert.True(t, contextutils.IsTranslationError(err))
		})
	}
}

func TestHTTPTranslationClient_InvalidBaseURL(t *testing.T) {
	req := serviceinterfaces.TranslationRequest{DestinationLanguage: "ru", Text: "hello"}

	for _, baseURL := range []string{"::bad", "ftapi.pythonanywhere.com", "", "mailto:someone@example.com"} {
		t.Run(baseURL, func(t *testing.T) {
			_, err := newTestHTTPClient(t, baseURL).Translate(context.Background(), req)
			assert.ErrorIs(t, err, contextutils.ErrBadURL)
		})
	}
}

func TestHTTPTranslationClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := newTestHTTPClient(t, baseURL).Translate(context.Background(), serviceinterfaces.TranslationRequest{
		DestinationLanguage: "ru",
		Text:                "hello",
	})
	assert.ErrorIs(t, err, contextutils.ErrBadResponse)
	assert.True(t, contextutils.IsRetryable(err))
}

func TestHTTPTranslationClient_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestHTTPClient(t, srv.URL).Translate(ctx, serviceinterfaces.TranslationRequest{
		DestinationLanguage: "ru",
		Text:                "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, contextutils.ErrBadResponse)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoopTranslationClient(t *testing.T) {
	client := NewNoopTranslationClient()

	result, err := client.Translate(context.Background(), serviceinterfaces.TranslationRequest{
		SourceLanguage:      "en",
		DestinationLanguage: "ru",
		Text:                "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.DestinationText)
	assert.Equal(t, "ru", result.DestinationLanguage)

	_, err = client.Translate(context.Background(), serviceinterfaces.TranslationRequest{Text: "hello"})
	assert.ErrorIs(t, err, contextutils.ErrBadURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Translate(ctx, serviceinterfaces.TranslationRequest{DestinationLanguage: "ru", Text: "hello"})
	assert.ErrorIs(t, err, contextutils.ErrBadResponse)
}

func TestNewTranslationClient(t *testing.T) {
	logger := observability.NewNopLogger()

	client, err := NewTranslationClient(&config.TranslationConfig{Provider: "http", BaseURL: config.DefaultBaseURL}, logger)
	require.NoError(t, err)
	assert.IsType(t, &HTTPTranslationClient{}, client)

	client, err = NewTranslationClient(&config.TranslationConfig{Provider: "noop"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &NoopTranslationClient{}, client)

	_, err = NewTranslationClient(&config.TranslationConfig{Provider: "carrier-pigeon"}, logger)
	assert.ErrorIs(t, err, contextutils.ErrConfigInvalid)
}
