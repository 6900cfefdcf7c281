package transcribe

import (
	"errors"
	"fmt"
)

// Sentinel errors for transcription failures. Together with the
// capture package sentinels these form the full error vocabulary the
// orchestrators map to user-facing messages.
var (
	// ErrTimeout is returned when the remote request exceeded its
	// deadline. Transient; the user may retry.
	ErrTimeout = errors.New("transcribe: request timed out")

	// ErrRateLimited is returned on HTTP 429. Transient.
	ErrRateLimited = errors.New("transcribe: rate limited")

	// ErrInvalidCredentials is returned on HTTP 401. Retrying without
	// fixing configuration will fail again.
	ErrInvalidCredentials = errors.New("transcribe: invalid credentials")

	// ErrServiceUnavailable is returned on HTTP 5xx. Transient.
	ErrServiceUnavailable = errors.New("transcribe: service unavailable")

	// ErrNetwork is returned on transport-level failures.
	ErrNetwork = errors.New("transcribe: network error")

	// ErrNoSpeechDetected is returned when transcription succeeded
	// but produced an empty transcript.
	ErrNoSpeechDetected = errors.New("transcribe: no speech detected")

	// ErrTranscriptionFailed is returned for all other non-2xx
	// responses.
	ErrTranscriptionFailed = errors.New("transcribe: transcription failed")

	// ErrPayloadTooLarge is returned before transmission when the
	// audio exceeds the size ceiling. Input validation: never routed
	// to a fallback.
	ErrPayloadTooLarge = errors.New("transcribe: audio payload exceeds size limit")

	// ErrRecognitionAborted is returned when a platform recognition
	// session was aborted before producing a transcript.
	ErrRecognitionAborted = errors.New("transcribe: recognition aborted")

	// ErrNoRecognizer is returned by a chain with no usable fallback.
	ErrNoRecognizer = errors.New("transcribe: no fallback recognizer available")
)

// APIError carries the HTTP detail behind a sentinel classification.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the service.
	Message string

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("transcribe [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the sentinel vocabulary so callers
// can branch with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401:
		return ErrInvalidCredentials
	case e.StatusCode == 429:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrServiceUnavailable
	default:
		return ErrTranscriptionFailed
	}
}

// Retryable reports whether the caller may retry or fall back.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("transcribe [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// wrapErr wraps an error with provider context.
func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
