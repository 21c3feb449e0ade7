// Package main provides the translate CLI: an interactive debounced translator and one-shot
// translation commands backed by the remote translation API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"translateapp/cmd/translate/commands"
	"translateapp/internal/config"
	"translateapp/internal/di"
	"translateapp/internal/observability"
	"translateapp/internal/version"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Flags default to the loaded configuration and
// override it when given.
func newRootCommand(cfg *config.Config) *cobra.Command {
	var container *di.ServiceContainer

	rootCmd := &cobra.Command{
		Use:     "translate",
		Short:   "Debounced translation client",
		Version: version.String(),
		Long: `Debounced translation client

Sends text to a translation API that implements GET /translate?sl=&dl=&text= and prints the result.
Configuration is read from $TRANSLATE_CONFIG_FILE or ./config.yaml and can be overridden by
environment variables (e.g. TRANSLATION_BASE_URL) and by the flags below.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			tp, mp, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, "translate-cli", cfg.LogLevel)
			if err != nil {
				return err
			}

			container = di.NewServiceContainer(cfg, logger,
				di.WithShutdownFunc(func(ctx context.Context) error {
					return observability.Shutdown(ctx, tp, mp, logger)
				}),
			)
			return container.Initialize(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return shutdown(container)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Translation.BaseURL, "base-url", cfg.Translation.BaseURL, "Translation API base URL")
	flags.StringVar(&cfg.Translation.Provider, "provider", cfg.Translation.Provider, "Translation provider: http or noop")
	flags.StringVarP(&cfg.Translation.SourceLanguage, "source", "s", cfg.Translation.SourceLanguage, "Source language code")
	flags.StringVarP(&cfg.Translation.TargetLanguage, "target", "t", cfg.Translation.TargetLanguage, "Target language code")
	flags.DurationVar(&cfg.Translation.DebounceInterval, "debounce", cfg.Translation.DebounceInterval, "Quiet interval before a translation is sent")
	flags.DurationVar(&cfg.Translation.Timeout, "timeout", cfg.Translation.Timeout, "HTTP request timeout")
	flags.StringVar(&cfg.Translation.Locale, "locale", cfg.Translation.Locale, "Language of error messages: en or ru")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	getContainer := func() di.ServiceContainerInterface { return container }

	rootCmd.AddCommand(commands.InteractiveCommand(getContainer))
	rootCmd.AddCommand(commands.TextCommand(getContainer))
	rootCmd.AddCommand(commands.LanguagesCommand())

	return rootCmd
}

// shutdown releases the container within the observability shutdown timeout
func shutdown(container *di.ServiceContainer) error {
	if container == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), config.ObservabilityShutdownTimeout)
	defer cancel()
	return container.Shutdown(ctx)
}
