// Package middleware provides gin middleware shared by the HTTP servers
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"translateapp/internal/observability"
	contextutils "translateapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorRecoveryConfig configures error recovery behavior
type ErrorRecoveryConfig struct {
	// EnableCircuitBreaker enables circuit breaker pattern
	EnableCircuitBreaker bool
	// CircuitBreakerThreshold is the number of consecutive 5xx responses that opens the circuit
	CircuitBreakerThreshold int
	// CircuitBreakerTimeout specifies how long to wait before retrying after circuit opens
	CircuitBreakerTimeout time.Duration
}

// DefaultErrorRecoveryConfig returns a default error recovery configuration
func DefaultErrorRecoveryConfig() *ErrorRecoveryConfig {
	return &ErrorRecoveryConfig{
		EnableCircuitBreaker:    false,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
	}
}

// circuitBreakerState represents the state of a circuit breaker
type circuitBreakerState int

const (
	circuitClosed circuitBreakerState = iota
	circuitOpen
	circuitHalfOpen
)

// circuitBreaker tracks failures and manages circuit state
type circuitBreaker struct {
	mu          sync.Mutex
	state       circuitBreakerState
	failures    int
	lastFailure time.Time
	config      *ErrorRecoveryConfig
	now         func() time.Time
}

func newCircuitBreaker(config *ErrorRecoveryConfig) *circuitBreaker {
	return &circuitBreaker{
		state:  circuitClosed,
		config: config,
		now:    time.Now,
	}
}

// canExecute checks if the circuit breaker allows execution
func (cb *circuitBreaker) canExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed, circuitHalfOpen:
		return true
	case circuitOpen:
		if cb.now().Sub(cb.lastFailure) > cb.config.CircuitBreakerTimeout {
			cb.state = circuitHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = circuitClosed
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = cb.now()

	if cb.state == circuitHalfOpen || cb.failures >= cb.config.CircuitBreakerThreshold {
		cb.state = circuitOpen
	}
}

// ErrorRecoveryMiddleware turns panics into INTERNAL_ERROR responses and, when enabled, answers
// 503 while too many consecutive requests have failed
func ErrorRecoveryMiddleware(logger *observability.Logger, config *ErrorRecoveryConfig) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if config == nil {
		config = DefaultErrorRecoveryConfig()
	}

	var cb *circuitBreaker
	if config.EnableCircuitBreaker {
		cb = newCircuitBreaker(config)
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := string(debug.Stack())

				panicErr, ok := r.(error)
				if !ok {
					panicErr = fmt.Errorf("panic: %v", r)
				}
				logger.Error(c.Request.Context(), "Panic recovered", panicErr, map[string]interface{}{
					"http.path":   c.Request.URL.Path,
					"stack_trace": stackTrace,
				})

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					panicErr,
				)
				if gin.Mode() == gin.DebugMode {
					appErr.Details = fmt.Sprintf("%s\nStack trace: %s", appErr.Details, stackTrace)
				}

				if cb != nil {
					cb.recordFailure()
				}
				abortWithAppError(c, http.StatusInternalServerError, appErr)
			}
		}()

		if cb != nil && !cb.canExecute() {
			abortWithAppError(c, http.StatusServiceUnavailable, contextutils.NewAppError(
				contextutils.ErrorCodeServiceUnavailable,
				contextutils.SeverityError,
				"Service temporarily unavailable due to high error rate",
				"",
			))
			return
		}

		c.Next()

		if cb != nil {
			if c.Writer.Status() >= http.StatusInternalServerError {
				cb.recordFailure()
			} else {
				cb.recordSuccess()
			}
		}
	}
}

// abortWithAppError writes err localized for the request's Accept-Language
func abortWithAppError(c *gin.Context, status int, err *contextutils.AppError) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, err.ToJSONWithLocale(c.GetHeader("Accept-Language")))
}
