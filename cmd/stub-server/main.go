// Package main provides a stub of the translation API. It answers GET /translate from a small
// built-in en/ru glossary so the CLI can be exercised without network access.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"translateapp/internal/config"
	"translateapp/internal/di"
	"translateapp/internal/handlers"
	"translateapp/internal/observability"
	"translateapp/internal/services"
	contextutils "translateapp/internal/utils"
)

// Application encapsulates the stub server and can be tested
type Application struct {
	container di.ServiceContainerInterface
	server    *http.Server
}

// NewApplication creates a new application instance
func NewApplication(container di.ServiceContainerInterface) (*Application, error) {
	client, err := container.GetTranslationClient()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get translation client")
	}

	router := handlers.NewRouter(container.GetConfig(), client, container.GetLogger())

	return &Application{
		container: container,
		server:    &http.Server{Handler: router, ReadHeaderTimeout: config.DefaultHTTPTimeout},
	}, nil
}

// Run listens on port and serves until ctx is cancelled
func (a *Application) Run(ctx context.Context, port string) error {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to listen on port %s", port)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then drains open requests
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return contextutils.WrapError(err, "server shutdown failed")
		}
		return nil
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return contextutils.WrapError(err, "server failed")
	}
}

// Shutdown releases the container
func (a *Application) Shutdown(ctx context.Context) error {
	return a.container.Shutdown(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tp, mp, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, handlers.StubServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting translation stub server", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.LogLevel,
	})

	container := di.NewServiceContainer(cfg, logger,
		di.WithTranslationClient(services.NewGlossaryTranslationClient()),
		di.WithShutdownFunc(func(ctx context.Context) error {
			return observability.Shutdown(ctx, tp, mp, logger)
		}),
	)
	if err := container.Initialize(ctx); err != nil {
		logger.Error(ctx, "Failed to initialize services", err)
		os.Exit(1)
	}

	app, err := NewApplication(container)
	if err != nil {
		logger.Error(ctx, "Failed to create application", err)
		os.Exit(1)
	}

	runErr := app.Run(ctx, cfg.Server.Port)
	if runErr != nil {
		logger.Error(ctx, "Application failed", runErr)
	} else {
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ObservabilityShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}

	if runErr != nil {
		os.Exit(1)
	}
}
