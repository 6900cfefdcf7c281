// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates configuration for the vitalvoice server.
type Config struct {
	Server     ServerConfig
	Transcribe TranscribeConfig
	Speech     SpeechConfig
	Store      StoreConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr     string
	LogLevel string
}

// TranscribeConfig holds remote ASR and fallback recognizer settings.
type TranscribeConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	RecognizerURL  string
	RecognizerKey  string
	MaxUploadBytes int
	RequestTimeout time.Duration
}

// SpeechConfig holds TTS settings for the voice chat surface.
type SpeechConfig struct {
	APIKey  string
	VoiceID string
}

// StoreConfig holds record-store settings. An empty RedisURL selects
// the in-memory store.
type StoreConfig struct {
	RedisURL string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:     ":" + envOr("PORT", "8080"),
			LogLevel: envOr("LOG_LEVEL", "info"),
		},
		Transcribe: TranscribeConfig{
			APIKey:         os.Getenv("ELEVENLABS_API_KEY"),
			BaseURL:        os.Getenv("SCRIBE_BASE_URL"),
			Model:          envOr("SCRIBE_MODEL", "scribe_v1"),
			Language:       envOr("SCRIBE_LANGUAGE", "en"),
			RecognizerURL:  os.Getenv("RECOGNIZER_WS_URL"),
			RecognizerKey:  os.Getenv("RECOGNIZER_API_KEY"),
			MaxUploadBytes: 2 << 20,
			RequestTimeout: 30 * time.Second,
		},
		Speech: SpeechConfig{
			APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
			VoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		},
		Store: StoreConfig{
			RedisURL: os.Getenv("REDIS_URL"),
		},
	}

	if v := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.Transcribe.MaxUploadBytes = n
	}

	if cfg.Transcribe.APIKey == "" {
		return nil, fmt.Errorf("config: ELEVENLABS_API_KEY is required")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
