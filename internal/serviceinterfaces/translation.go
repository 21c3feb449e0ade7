// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"
)

// TranslationRequest is a single request to the translation API.
// SourceLanguage may be empty to ask the API to detect it.
type TranslationRequest struct {
	SourceLanguage      string `json:"sl,omitempty"`
	DestinationLanguage string `json:"dl" validate:"required"`
	Text                string `json:"text" validate:"required"`
}

// TranslationResult is a successful translation as returned by the API
type TranslationResult struct {
	SourceLanguage      string `json:"source-language"`
	SourceText          string `json:"source-text"`
	DestinationLanguage string `json:"destination-language"`
	DestinationText     string `json:"destination-text"`
}

// TranslationClient translates text through a remote or local provider.
// Errors are *contextutils.AppError values with a BAD_URL, BAD_RESPONSE, INVALID_DATA or
// DECODE_ERROR code.
type TranslationClient interface {
	Translate(ctx context.Context, req TranslationRequest) (*TranslationResult, error)
}

// TranslationObserver receives state changes from the translation orchestrator.
// All methods are called from the orchestrator's own goroutine, one at a time.
type TranslationObserver interface {
	TranslationChanged(text string)
	LoadingStateChanged(loading bool)
	ErrorReceived(message string)
	SourceLanguageChanged(name string)
	TargetLanguageChanged(name string)
}

// ObserverFuncs adapts optional callbacks to TranslationObserver. Nil fields are skipped.
type ObserverFuncs struct {
	OnTranslationChanged    func(text string)
	OnLoadingStateChanged   func(loading bool)
	OnErrorReceived         func(message string)
	OnSourceLanguageChanged func(name string)
	OnTargetLanguageChanged func(name string)
}

// TranslationChanged implements TranslationObserver
func (o ObserverFuncs) TranslationChanged(text string) {
	if o.OnTranslationChanged != nil {
		o.OnTranslationChanged(text)
	}
}

// LoadingStateChanged implements TranslationObserver
func (o ObserverFuncs) LoadingStateChanged(loading bool) {
	if o.OnLoadingStateChanged != nil {
		o.OnLoadingStateChanged(loading)
	}
}

// ErrorReceived implements TranslationObserver
func (o ObserverFuncs) ErrorReceived(message string) {
	if o.OnErrorReceived != nil {
		o.OnErrorReceived(message)
	}
}

// SourceLanguageChanged implements TranslationObserver
func (o ObserverFuncs) SourceLanguageChanged(name string) {
	if o.OnSourceLanguageChanged != nil {
		o.OnSourceLanguageChanged(name)
	}
}

// TargetLanguageChanged implements TranslationObserver
func (o ObserverFuncs) TargetLanguageChanged(name string) {
	if o.OnTargetLanguageChanged != nil {
		o.OnTargetLanguageChanged(name)
	}
}

var _ TranslationObserver = ObserverFuncs{}
