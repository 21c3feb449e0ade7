package commands

import (
	"fmt"

	"translateapp/internal/services"

	"github.com/spf13/cobra"
)

// LanguagesCommand returns the command that prints language display names
func LanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [codes...]",
		Short: "Print display names for language codes",
		Long:  `Print the display name of each given language code, or of every language with a dedicated name when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := args
			if len(codes) == 0 {
				codes = services.SupportedLanguages()
			}
			for _, code := range codes {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, services.LanguageDisplayName(code)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
