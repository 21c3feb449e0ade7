package config

import "time"

// Translation defaults
const (
	// DefaultBaseURL is the public translation API the original app talks to
	DefaultBaseURL = "https://ftapi.pythonanywhere.com"
	// DefaultDebounceInterval is the quiet period before a typed text is sent for translation
	DefaultDebounceInterval = 300 * time.Millisecond
	// DefaultSourceLanguage is the initial source language code
	DefaultSourceLanguage = "en"
	// DefaultTargetLanguage is the initial target language code
	DefaultTargetLanguage = "ru"
	// DefaultLocale selects the language of user-facing error messages
	DefaultLocale = "ru"
	// DefaultProvider selects the HTTP translation client
	DefaultProvider = "http"
	// DefaultMaxResponseBytes caps how much of a translation response body is read
	DefaultMaxResponseBytes = 1 << 20
)

// Timeout constants
const (
	// DefaultHTTPTimeout bounds a single translation HTTP round trip
	DefaultHTTPTimeout = 30 * time.Second
	// ServerShutdownTimeout bounds graceful shutdown of the stub server
	ServerShutdownTimeout = 30 * time.Second
	// ObservabilityShutdownTimeout bounds flushing of tracer and meter providers
	ObservabilityShutdownTimeout = 5 * time.Second
	// TestTimeout is a short timeout used in unit tests
	TestTimeout = 100 * time.Millisecond
)

// Server defaults
const (
	// DefaultServerPort is the port of the stub translation API
	DefaultServerPort = "8089"
	// DefaultLogLevel is used when no level is configured
	DefaultLogLevel = "info"
	// DefaultServiceName is reported to OpenTelemetry when none is configured
	DefaultServiceName = "translateapp"
	// DefaultCSP is the Content-Security-Policy of the stub translation API
	DefaultCSP = "default-src 'none'; frame-ancestors 'none'"
)
