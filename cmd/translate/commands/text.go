package commands

import (
	"context"
	"fmt"
	"strings"

	"translateapp/internal/di"
	"translateapp/internal/serviceinterfaces"

	"github.com/spf13/cobra"
)

// TextCommand returns the one-shot translation command
func TextCommand(container func() di.ServiceContainerInterface) *cobra.Command {
	var autoDetect bool

	cmd := &cobra.Command{
		Use:   "text [words...]",
		Short: "Translate the given text once and print the result",
		Long: `Translate the arguments, joined by spaces, without debouncing.

The source and target languages come from --source and --target. With --detect the source
language is left to the translation API.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunText(cmd.Context(), container(), strings.Join(args, " "), autoDetect, cmd)
		},
	}
	cmd.Flags().BoolVar(&autoDetect, "detect", false, "Let the API detect the source language")

	return cmd
}

// RunText translates text with the container's client and prints the translated text
func RunText(ctx context.Context, container di.ServiceContainerInterface, text string, autoDetect bool, cmd *cobra.Command) error {
	cfg := container.GetConfig()
	client, err := container.GetTranslationClient()
	if err != nil {
		return err
	}

	req := serviceinterfaces.TranslationRequest{
		SourceLanguage:      cfg.Translation.SourceLanguage,
		DestinationLanguage: cfg.Translation.TargetLanguage,
		Text:                text,
	}
	if autoDetect {
		req.SourceLanguage = ""
	}

	if cfg.Translation.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Translation.Timeout)
		defer cancel()
	}

	result, err := client.Translate(ctx, req)
	if err != nil {
		container.GetLogger().Error(ctx, "Translation failed", err, map[string]interface{}{"text_length": len(text)})
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), describeError(err, cfg.Translation.Locale))
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.DestinationText)
	return nil
}
