// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "translateapp/internal/utils"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at the YAML config file
const ConfigFileEnv = "TRANSLATE_CONFIG_FILE"

// Config holds all configuration for the application
type Config struct {
	// Translation client and orchestrator configuration
	Translation TranslationConfig `json:"translation" yaml:"translation"`

	// Stub translation API server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	LogLevel string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// TranslationConfig configures the remote translation API and the debounce behaviour
type TranslationConfig struct {
	// Provider is "http" for the remote API or "noop" to echo input back
	Provider         string        `json:"provider" yaml:"provider" validate:"oneof=http noop"`
	BaseURL          string        `json:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
	DebounceInterval time.Duration `json:"debounce_interval" yaml:"debounce_interval" validate:"gt=0"`
	SourceLanguage   string        `json:"source_language" yaml:"source_language" validate:"required"`
	TargetLanguage   string        `json:"target_language" yaml:"target_language" validate:"required"`
	// Locale selects the language of error messages shown to the user
	Locale           string `json:"locale" yaml:"locale" validate:"required"`
	MaxResponseBytes int64  `json:"max_response_bytes" yaml:"max_response_bytes" validate:"gt=0"`
	// MessagesFile optionally names a JSON file of {"CODE": {"locale": "message"}} overrides
	MessagesFile string `json:"messages_file" yaml:"messages_file"`
}

// ServerConfig represents the stub server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port" validate:"required,numeric"`
	Debug       bool     `json:"debug" yaml:"debug"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
	// CircuitBreakerThreshold is the number of consecutive 5xx responses after which the
	// server answers 503 for a while. Zero disables the breaker.
	CircuitBreakerThreshold int `json:"circuit_breaker_threshold" yaml:"circuit_breaker_threshold" validate:"gte=0"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "translateapp"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
}

// NewConfig loads configuration from the YAML file (if any), overrides it with environment
// variables, fills defaults and validates the result
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration populated only with defaults
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := contextutils.ValidateStruct(c); err != nil {
		return contextutils.WrapError(err, "invalid configuration")
	}
	return nil
}

// applyDefaults fills zero values with their defaults
func (c *Config) applyDefaults() {
	t := &c.Translation
	if t.Provider == "" {
		t.Provider = DefaultProvider
	}
	if t.BaseURL == "" {
		t.BaseURL = DefaultBaseURL
	}
	if t.Timeout == 0 {
		t.Timeout = DefaultHTTPTimeout
	}
	if t.DebounceInterval == 0 {
		t.DebounceInterval = DefaultDebounceInterval
	}
	if t.SourceLanguage == "" {
		t.SourceLanguage = DefaultSourceLanguage
	}
	if t.TargetLanguage == "" {
		t.TargetLanguage = DefaultTargetLanguage
	}
	if t.Locale == "" {
		t.Locale = DefaultLocale
	}
	if t.MaxResponseBytes == 0 {
		t.MaxResponseBytes = DefaultMaxResponseBytes
	}

	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	otel := &c.OpenTelemetry
	if otel.Protocol == "" {
		otel.Protocol = "grpc"
	}
	if otel.Endpoint == "" {
		otel.Endpoint = "localhost:4317"
	}
	if otel.ServiceName == "" {
		otel.ServiceName = DefaultServiceName
	}
	if otel.SamplingRate == 0 {
		otel.SamplingRate = 1.0
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnvWithPrefix(c, "")
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables.
// The variable name is the upper-cased yaml tag path, e.g. TRANSLATION_BASE_URL.
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		// time.Duration is an int64 kind but is written as "300ms" in the environment
		if field.Type() == durationType {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type().Elem().Kind() == reflect.String {
					field.Set(reflect.ValueOf(strings.Split(envVal, ",")))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by TRANSLATE_CONFIG_FILE, or config.yaml
// in the working directory. A missing default file is not an error.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
