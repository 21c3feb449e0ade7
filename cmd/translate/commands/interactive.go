package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"translateapp/internal/di"
	"translateapp/internal/services"
	contextutils "translateapp/internal/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const interactiveHelp = `Type text to translate it. Commands:
  :swap          swap source and target languages
  :clear         clear the text
  :source CODE   set the source language
  :target CODE   set the target language
  :state         print the current state
  :help          show this help
  :quit          exit`

// idlePollInterval is how often the session checks for outstanding work before exiting
const idlePollInterval = 10 * time.Millisecond

// InteractiveCommand returns the interactive command
func InteractiveCommand(container func() di.ServiceContainerInterface) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Translate text as you type",
		Long: `Read lines from standard input and translate each one after the debounce interval.

Every line replaces the current text. Lines starting with ':' are commands; type :help for the list.
When standard input ends, the session waits for the last translation before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt := term.IsTerminal(int(os.Stdin.Fd()))
			return RunInteractive(cmd.Context(), container(), cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
		},
	}
}

// RunInteractive drives an orchestrator from the lines of in and prints its notifications to out
func RunInteractive(ctx context.Context, container di.ServiceContainerInterface, in io.Reader, out io.Writer, prompt bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	console := NewConsoleObserver(out)
	orchestrator, err := container.NewOrchestrator(console)
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	state, err := orchestrator.State(ctx)
	if err != nil {
		return err
	}
	if prompt {
		console.printf("%s → %s\n%s", services.LanguageDisplayName(state.SourceLanguage),
			services.LanguageDisplayName(state.TargetLanguage), interactiveHelp)
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return contextutils.WrapError(err, "failed to read input")
					}
				default:
				}
				return waitIdle(ctx, orchestrator)
			}
			quit, err := handleLine(ctx, orchestrator, console, line)
			if err != nil {
				console.printf("[error] %s", describeError(err, container.GetConfig().Translation.Locale))
			}
			if quit {
				return nil
			}
		}
	}
}

// handleLine applies one input line and reports whether the session should end
func handleLine(ctx context.Context, o *services.TranslationOrchestrator, console *ConsoleObserver, line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		o.UpdateInputText(line)
		return false, nil
	}

	fields := strings.Fields(line)
	command, arg := fields[0], ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch command {
	case ":swap":
		o.SwapLanguages()
	case ":clear":
		o.ClearText()
	case ":source":
		return false, o.SetSourceLanguage(arg)
	case ":target":
		return false, o.SetTargetLanguage(arg)
	case ":state":
		state, err := o.State(ctx)
		if err != nil {
			return false, err
		}
		console.printf("[state] %s → %s | input=%q translated=%q pending=%t loading=%t",
			state.SourceLanguage, state.TargetLanguage, state.InputText, state.TranslatedText, state.Pending, state.Loading)
	case ":help":
		console.printf("%s", interactiveHelp)
	case ":quit", ":q":
		return true, nil
	default:
		return false, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Unknown command", fmt.Sprintf("%s (type :help)", command))
	}
	return false, nil
}

// waitIdle blocks until the orchestrator has neither a scheduled nor an in-flight request
func waitIdle(ctx context.Context, o *services.TranslationOrchestrator) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		state, err := o.State(ctx)
		if err != nil {
			return err
		}
		if !state.Pending && !state.Loading {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// describeError returns the localized message for err, followed by its details when present
func describeError(err error, locale string) string {
	var appErr *contextutils.AppError
	if errors.As(err, &appErr) && appErr.Details != "" {
		return contextutils.GetLocalizedMessageWithDetails(appErr.Code, contextutils.ParseLocale(locale), appErr.Details)
	}
	return contextutils.GetErrorLocalizedMessage(err, locale)
}
