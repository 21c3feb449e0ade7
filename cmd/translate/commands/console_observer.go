// Package commands provides the subcommands of the translate CLI
package commands

import (
	"fmt"
	"io"
	"sync"

	"translateapp/internal/serviceinterfaces"
)

// ConsoleObserver prints orchestrator notifications, one per line
type ConsoleObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleObserver creates a ConsoleObserver writing to out
func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	return &ConsoleObserver{out: out}
}

func (c *ConsoleObserver) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// TranslationChanged implements serviceinterfaces.TranslationObserver
func (c *ConsoleObserver) TranslationChanged(text string) {
	c.printf("[translation] %s", text)
}

// LoadingStateChanged implements serviceinterfaces.TranslationObserver
func (c *ConsoleObserver) LoadingStateChanged(loading bool) {
	if loading {
		c.printf("[loading] ...")
		return
	}
	c.printf("[loading] done")
}

// ErrorReceived implements serviceinterfaces.TranslationObserver
func (c *ConsoleObserver) ErrorReceived(message string) {
	c.printf("[error] %s", message)
}

// SourceLanguageChanged implements serviceinterfaces.TranslationObserver
func (c *ConsoleObserver) SourceLanguageChanged(name string) {
	c.printf("[source] %s", name)
}

// TargetLanguageChanged implements serviceinterfaces.TranslationObserver
func (c *ConsoleObserver) TargetLanguageChanged(name string) {
	c.printf("[target] %s", name)
}

var _ serviceinterfaces.TranslationObserver = (*ConsoleObserver)(nil)
