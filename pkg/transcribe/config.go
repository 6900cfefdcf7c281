package transcribe

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pulsekit/vitalvoice/internal/httpc"
)

// Config holds transcription provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	APIKey  string
	BaseURL string

	// Defaults applied when Options leave fields empty
	ModelID  string
	Language string

	// Granularities is the timestamp granularity list sent to the
	// remote service, comma-joined on the wire.
	Granularities []string

	// Limits
	Timeout       time.Duration
	MaxAudioBytes int

	// Observability
	Logger *slog.Logger

	// HTTPClient overrides the shared client (tests).
	HTTPClient *http.Client
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithAPIKey sets the API key for the provider.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the default model ID.
func WithModel(modelID string) Option {
	return func(c *Config) {
		c.ModelID = modelID
	}
}

// WithLanguage sets the default language code.
func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxAudioBytes sets the payload ceiling.
func WithMaxAudioBytes(n int) Option {
	return func(c *Config) {
		c.MaxAudioBytes = n
	}
}

// WithLogger sets the structured logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelID:       "scribe_v1",
		Language:      "en",
		Granularities: []string{"segment"},
		Timeout:       30 * time.Second,
		MaxAudioBytes: DefaultMaxAudioBytes,
		Logger:        slog.Default(),
		HTTPClient:    httpc.Client,
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrInvalidCredentials
	}
	return nil
}
