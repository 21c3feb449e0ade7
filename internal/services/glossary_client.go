package services

import (
	"context"
	"strings"
	"unicode"

	"translateapp/internal/serviceinterfaces"
	contextutils "translateapp/internal/utils"
)

// enRuGlossary is the word list served by the stub translation API
var enRuGlossary = map[string]string{
	"hello":     "привет",
	"world":     "мир",
	"good":      "хороший",
	"morning":   "утро",
	"evening":   "вечер",
	"thanks":    "спасибо",
	"yes":       "да",
	"no":        "нет",
	"cat":       "кот",
	"dog":       "собака",
	"house":     "дом",
	"water":     "вода",
	"friend":    "друг",
	"book":      "книга",
	"language":  "язык",
	"translate": "переводить",
	"i":         "я",
	"love":      "люблю",
	"and":       "и",
}

// GlossaryTranslationClient translates word by word using a small built-in en/ru glossary.
// Words missing from the glossary are passed through unchanged.
type GlossaryTranslationClient struct {
	dictionaries map[[2]string]map[string]string
}

// NewGlossaryTranslationClient creates a client with the built-in glossary in both directions
func NewGlossaryTranslationClient() *GlossaryTranslationClient {
	ruEn := make(map[string]string, len(enRuGlossary))
	for en, ru := range enRuGlossary {
		ruEn[ru] = en
	}
	return &GlossaryTranslationClient{
		dictionaries: map[[2]string]map[string]string{
			{"en", "ru"}: enRuGlossary,
			{"ru", "en"}: ruEn,
		},
	}
}

// Translate implements serviceinterfaces.TranslationClient
func (c *GlossaryTranslationClient) Translate(ctx context.Context, req serviceinterfaces.TranslationRequest) (*serviceinterfaces.TranslationResult, error) {
	if req.DestinationLanguage == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Destination language is required", "dl")
	}
	if req.Text == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBadURL, contextutils.SeverityError,
			"Text is required", "text")
	}
	if err := ctx.Err(); err != nil {
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeBadResponse, contextutils.SeverityWarn,
			"Translation request cancelled", "", err)
	}

	source := req.SourceLanguage
	if source == "" {
		source = DetectLanguage(req.Text)
	}

	translated := req.Text
	if dict, ok := c.dictionaries[[2]string{source, req.DestinationLanguage}]; ok {
		translated = translateWords(req.Text, dict)
	}

	return &serviceinterfaces.TranslationResult{
		SourceLanguage:      source,
		SourceText:          req.Text,
		DestinationLanguage: req.DestinationLanguage,
		DestinationText:     translated,
	}, nil
}

// DetectLanguage guesses "ru" for text containing Cyrillic letters and "en" otherwise
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return "ru"
		}
	}
	return "en"
}

// translateWords replaces every glossary word in text, keeping punctuation and spacing.
// A word that starts with a capital letter keeps its capital.
func translateWords(text string, dict map[string]string) string {
	var out strings.Builder
	var word []rune

	flush := func() {
		if len(word) == 0 {
			return
		}
		original := string(word)
		if translated, ok := dict[strings.ToLower(original)]; ok {
			if unicode.IsUpper(word[0]) {
				translated = capitalize(translated)
			}
			out.WriteString(translated)
		} else {
			out.WriteString(original)
		}
		word = word[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) || r == '\'' {
			word = append(word, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()

	return out.String()
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

var _ serviceinterfaces.TranslationClient = (*GlossaryTranslationClient)(nil)
