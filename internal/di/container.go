// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"errors"
	"os"
	"sync"

	"translateapp/internal/config"
	"translateapp/internal/observability"
	"translateapp/internal/serviceinterfaces"
	"translateapp/internal/services"
	contextutils "translateapp/internal/utils"

	"go.opentelemetry.io/otel/metric"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	GetTranslationClient() (serviceinterfaces.TranslationClient, error)
	GetMetrics() *observability.TranslationMetrics
	NewOrchestrator(observer serviceinterfaces.TranslationObserver) (*services.TranslationOrchestrator, error)
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer builds the translation client and orchestrators from config and owns their lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	meterProvider metric.MeterProvider
	scheduler     services.Scheduler

	mu            sync.RWMutex
	client        serviceinterfaces.TranslationClient
	metrics       *observability.TranslationMetrics
	orchestrators []*services.TranslationOrchestrator
	shutdownFuncs []func(context.Context) error
	initialized   bool
	shutDown      bool
}

// Option customizes a ServiceContainer
type Option func(*ServiceContainer)

// WithTranslationClient replaces the client selected by config (for testing)
func WithTranslationClient(client serviceinterfaces.TranslationClient) Option {
	return func(sc *ServiceContainer) { sc.client = client }
}

// WithScheduler replaces the real-time debounce scheduler (for testing)
func WithScheduler(scheduler services.Scheduler) Option {
	return func(sc *ServiceContainer) { sc.scheduler = scheduler }
}

// WithMeterProvider records orchestrator metrics on mp instead of the global provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(sc *ServiceContainer) { sc.meterProvider = mp }
}

// WithShutdownFunc registers an extra function to run on Shutdown, such as flushing telemetry
func WithShutdownFunc(f func(context.Context) error) Option {
	return func(sc *ServiceContainer) { sc.shutdownFuncs = append(sc.shutdownFuncs, f) }
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger, opts ...Option) *ServiceContainer {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	sc := &ServiceContainer{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Initialize creates the translation client and metrics instruments
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutDown {
		return contextutils.ErrClosed
	}
	if sc.initialized {
		return nil
	}

	if path := sc.cfg.Translation.MessagesFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to read messages file %s", path)
		}
		if err := contextutils.ConfigureLocalizedMessages(string(data)); err != nil {
			return contextutils.WrapErrorf(err, "failed to load messages file %s", path)
		}
	}
	if locale := contextutils.ParseLocale(sc.cfg.Translation.Locale); !contextutils.IsSupportedLocale(locale) {
		sc.logger.Warn(ctx, "No messages for configured locale, falling back to English", map[string]interface{}{
			"locale": string(locale),
		})
	}

	if sc.client == nil {
		client, err := services.NewTranslationClient(&sc.cfg.Translation, sc.logger)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to create translation client")
		}
		sc.client = client
	}

	metrics, err := observability.NewTranslationMetrics(sc.meterProvider)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to create translation metrics")
	}
	sc.metrics = metrics
	sc.initialized = true

	sc.logger.Info(ctx, "Service container initialized", map[string]interface{}{
		"provider":          sc.cfg.Translation.Provider,
		"base_url":          sc.cfg.Translation.BaseURL,
		"debounce_interval": sc.cfg.Translation.DebounceInterval.String(),
	})
	return nil
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// GetTranslationClient returns the configured translation client
func (sc *ServiceContainer) GetTranslationClient() (serviceinterfaces.TranslationClient, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if !sc.initialized {
		return nil, contextutils.ErrorWithContextf("service container is not initialized")
	}
	return sc.client, nil
}

// GetMetrics returns the translation metrics instruments
func (sc *ServiceContainer) GetMetrics() *observability.TranslationMetrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// NewOrchestrator starts an orchestrator reporting to observer. It is closed by Shutdown.
func (sc *ServiceContainer) NewOrchestrator(observer serviceinterfaces.TranslationObserver) (*services.TranslationOrchestrator, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutDown {
		return nil, contextutils.ErrClosed
	}
	if !sc.initialized {
		return nil, contextutils.ErrorWithContextf("service container is not initialized")
	}

	opts := services.OptionsFromConfig(&sc.cfg.Translation)
	opts.Scheduler = sc.scheduler
	opts.Metrics = sc.metrics
	opts.Logger = sc.logger

	orchestrator := services.NewTranslationOrchestrator(sc.client, observer, opts)
	sc.orchestrators = append(sc.orchestrators, orchestrator)
	return orchestrator, nil
}

// Shutdown closes every orchestrator, then runs the registered shutdown functions in reverse order
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	sc.shutDown = true
	orchestrators := sc.orchestrators
	sc.orchestrators = nil
	shutdownFuncs := sc.shutdownFuncs
	sc.shutdownFuncs = nil
	sc.mu.Unlock()

	for _, o := range orchestrators {
		o.Close()
	}

	var errs []error
	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown function failed", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return contextutils.WrapErrorf(errors.Join(errs...), "shutdown errors")
	}
	return nil
}

var _ ServiceContainerInterface = (*ServiceContainer)(nil)
