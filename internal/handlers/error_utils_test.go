package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"translateapp/internal/config"
	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var recorded []*gin.Error
	router.GET("/app", func(c *gin.Context) {
		HandleAppError(c, contextutils.WrapError(contextutils.ErrDecodeError, "decode"))
		recorded = c.Errors
	})
	router.GET("/plain", func(c *gin.Context) {
		HandleAppError(c, errors.New("disk full"))
	})

	w := doGet(router, "/app", map[string]string{"Accept-Language": "en-US"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Len(t, recorded, 1)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "DECODE_ERROR", response["code"])
	assert.Equal(t, "The translation service returned an unexpected response", response["message"])

	w = doGet(router, "/plain", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", response["code"])
	assert.Equal(t, "disk full", response["details"])
}

type panickingClient struct{}

func (panickingClient) Translate(context.Context, serviceinterfaces.TranslationRequest) (*serviceinterfaces.TranslationResult, error) {
	panic("glossary corrupted")
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	router, logs := newTestRouter(t, panickingClient{})

	w := doGet(router, "/translate?dl=ru&text=hello", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())

	// The router keeps serving after a panic
	assert.Equal(t, http.StatusOK, doGet(router, "/health", nil).Code)
}

func TestRouter_CircuitBreakerFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.CircuitBreakerThreshold = 1
	router := NewRouter(cfg, failingClient{err: contextutils.ErrBadResponse}, nil)

	assert.Equal(t, http.StatusBadGateway, doGet(router, "/translate?dl=ru&text=hello", nil).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/translate?dl=ru&text=hello", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
