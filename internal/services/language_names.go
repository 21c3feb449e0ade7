package services

import (
	"maps"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// languageNames holds the display names shown for the supported languages
var languageNames = map[string]string{
	"en": "Английский",
	"ru": "Русский",
}

// LanguageDisplayName returns the human-readable name of a language code.
// Unknown codes are shown as the upper-cased code itself.
func LanguageDisplayName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return cases.Upper(language.Und).String(code)
}

// SupportedLanguages returns the codes that have a dedicated display name, sorted
func SupportedLanguages() []string {
	return slices.Sorted(maps.Keys(languageNames))
}
