package contextutils

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Locale represents a language locale (e.g., "en", "ru")
type Locale string

const (
	// LocaleEnglish represents English language
	LocaleEnglish Locale = "en"
	// LocaleRussian represents Russian language
	LocaleRussian Locale = "ru"
)

// LocalizedMessages contains localized error messages for different locales
type LocalizedMessages struct {
	mu       sync.RWMutex
	messages map[ErrorCode]map[Locale]string
}

// NewLocalizedMessages creates a new instance of localized messages
func NewLocalizedMessages() *LocalizedMessages {
	return &LocalizedMessages{
		messages: make(map[ErrorCode]map[Locale]string),
	}
}

// AddMessage adds a localized message for a specific error code and locale
func (lm *LocalizedMessages) AddMessage(code ErrorCode, locale Locale, message string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.messages[code] == nil {
		lm.messages[code] = make(map[Locale]string)
	}
	lm.messages[code][locale] = message
}

// GetMessage returns the localized message for an error code and locale
func (lm *LocalizedMessages) GetMessage(code ErrorCode, locale Locale) string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	if localeMessages, exists := lm.messages[code]; exists {
		if message, exists := localeMessages[locale]; exists {
			return message
		}

		if message, exists := localeMessages[LocaleEnglish]; exists {
			return message
		}
	}

	return getDefaultMessage(code)
}

// GetMessageWithDetails returns a localized message with additional details
func (lm *LocalizedMessages) GetMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	message := lm.GetMessage(code, locale)
	if details != "" {
		return fmt.Sprintf("%s: %s", message, details)
	}
	return message
}

// getDefaultMessage returns a default English message for error codes
func getDefaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeBadURL:
		return "Could not build the translation request"
	case ErrorCodeBadResponse:
		return "The translation service could not be reached"
	case ErrorCodeInvalidData:
		return "The translation service returned no data"
	case ErrorCodeDecodeError:
		return "The translation service returned an unexpected response"
	case ErrorCodeInvalidInput:
		return "Invalid input"
	case ErrorCodeMissingRequired:
		return "Missing required field"
	case ErrorCodeValidationFailed:
		return "Validation failed"
	case ErrorCodeServiceUnavailable:
		return "Service temporarily unavailable"
	case ErrorCodeTimeout:
		return "Request timeout"
	case ErrorCodeInternalError:
		return "Internal error"
	case ErrorCodeClosed:
		return "Translator is closed"
	case ErrorCodeConfigInvalid:
		return "Configuration invalid"
	default:
		return "An error occurred"
	}
}

// LoadMessagesFromJSON loads localized messages from a JSON structure
func (lm *LocalizedMessages) LoadMessagesFromJSON(jsonData string) error {
	var data map[string]map[string]string
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return WrapError(err, "failed to parse localization JSON")
	}

	for codeStr, localeMessages := range data {
		code := ErrorCode(codeStr)
		for localeStr, message := range localeMessages {
			lm.AddMessage(code, Locale(localeStr), message)
		}
	}

	return nil
}

// GetSupportedLocales returns a list of supported locales
func (lm *LocalizedMessages) GetSupportedLocales() []Locale {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	locales := make(map[Locale]bool)

	for _, localeMessages := range lm.messages {
		for locale := range localeMessages {
			locales[locale] = true
		}
	}

	result := make([]Locale, 0, len(locales))
	for locale := range locales {
		result = append(result, locale)
	}

	return result
}

// ParseLocale parses a locale string (e.g., "en-US", "ru_RU") and returns the language part
func ParseLocale(localeStr string) Locale {
	localeStr = strings.ReplaceAll(localeStr, "_", "-")
	parts := strings.Split(localeStr, "-")
	if len(parts) > 0 && parts[0] != "" {
		return Locale(strings.ToLower(parts[0]))
	}
	return LocaleEnglish
}

// defaultMessagesJSON holds the built-in translations of the English default messages
const defaultMessagesJSON = `{
	"BAD_URL": {"ru": "Не удалось сформировать запрос на перевод"},
	"BAD_RESPONSE": {"ru": "Сервис перевода недоступен"},
	"INVALID_DATA": {"ru": "Сервис перевода не вернул данных"},
	"DECODE_ERROR": {"ru": "Не удалось разобрать ответ сервиса перевода"},
	"INVALID_INPUT": {"ru": "Некорректный ввод"},
	"INTERNAL_SERVER_ERROR": {"ru": "Внутренняя ошибка"}
}`

var globalLocalizedMessages = newDefaultLocalizedMessages()

func newDefaultLocalizedMessages() *LocalizedMessages {
	lm := NewLocalizedMessages()
	if err := lm.LoadMessagesFromJSON(defaultMessagesJSON); err != nil {
		panic(err)
	}
	return lm
}

// ConfigureLocalizedMessages replaces the global messages with the built-in ones overlaid by
// overridesJSON, which has the same {"CODE": {"locale": "message"}} shape. It must be called
// before any translation work starts.
func ConfigureLocalizedMessages(overridesJSON string) error {
	lm := newDefaultLocalizedMessages()
	if err := lm.LoadMessagesFromJSON(overridesJSON); err != nil {
		return err
	}
	SetGlobalLocalizedMessages(lm)
	return nil
}

// IsSupportedLocale reports whether messages exist for locale. English is always supported.
func IsSupportedLocale(locale Locale) bool {
	if locale == LocaleEnglish {
		return true
	}
	for _, l := range globalLocalizedMessages.GetSupportedLocales() {
		if l == locale {
			return true
		}
	}
	return false
}

// GetLocalizedMessage returns a localized error message using the global instance
func GetLocalizedMessage(code ErrorCode, locale Locale) string {
	return globalLocalizedMessages.GetMessage(code, locale)
}

// GetLocalizedMessageWithDetails returns a localized error message with details
func GetLocalizedMessageWithDetails(code ErrorCode, locale Locale, details string) string {
	return globalLocalizedMessages.GetMessageWithDetails(code, locale, details)
}

// SetGlobalLocalizedMessages sets the global localized messages instance
func SetGlobalLocalizedMessages(messages *LocalizedMessages) {
	globalLocalizedMessages = messages
}
