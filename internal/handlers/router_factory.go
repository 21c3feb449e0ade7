package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"translateapp/internal/config"
	"translateapp/internal/middleware"
	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	"translateapp/internal/version"
)

// StubServiceName identifies the stub translation API in traces and /version
const StubServiceName = "translate-stub"

// NewRouter creates the stub translation API router with logging, tracing and CORS middleware
func NewRouter(cfg *config.Config, client serviceinterfaces.TranslationClient, logger *observability.Logger) *gin.Engine {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	recovery := middleware.DefaultErrorRecoveryConfig()
	if cfg.Server.CircuitBreakerThreshold > 0 {
		recovery.EnableCircuitBreaker = true
		recovery.CircuitBreakerThreshold = cfg.Server.CircuitBreakerThreshold
	}
	router.Use(middleware.ErrorRecoveryMiddleware(logger, recovery))
	router.Use(requestLogger(logger))

	// Security headers; the API only serves JSON so nothing else may be loaded
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": StubServiceName})
	})

	router.Use(observability.GinMiddleware(StubServiceName))
	router.Use(observability.ErrorAttributesMiddleware())

	router.RedirectTrailingSlash = false

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Accept", "Accept-Language", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	translationHandler := NewTranslationHandler(client, logger)

	router.GET("/translate", translationHandler.Translate)
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get(StubServiceName))
	})

	return router
}

// requestLogger logs every request at a level chosen by its status code
func requestLogger(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  time.Since(start).Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.request_id":  c.GetHeader("X-Request-ID"),
		}
		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		case statusCode >= 400:
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		default:
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	}
}
