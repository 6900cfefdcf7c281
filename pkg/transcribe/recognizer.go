package transcribe

import (
	"context"
	"fmt"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

// Recognizer is a one-shot platform speech-recognition facility used
// as a fallback when the remote ASR service fails. It is
// non-continuous, single-language and single-alternative.
type Recognizer interface {
	// Recognize runs one recognition pass over the captured audio.
	Recognize(ctx context.Context, audio *capture.AudioBuffer, language string) (*Result, error)

	// Available reports whether the facility can be used in this
	// runtime.
	Available() bool
}

// Platform recognizer error codes, the small fixed vocabulary emitted
// by in-browser and on-device recognition sessions.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNotAllowed   = "not-allowed"
	CodeNetwork      = "network"
	CodeAborted      = "aborted"
)

// NormalizeRecognizerCode translates a platform recognizer error code
// into the shared error vocabulary, so callers need one handling
// branch regardless of which path served the request.
func NormalizeRecognizerCode(code string) error {
	switch code {
	case CodeNoSpeech:
		return ErrNoSpeechDetected
	case CodeAudioCapture:
		return capture.ErrDeviceUnavailable
	case CodeNotAllowed:
		return capture.ErrPermissionDenied
	case CodeNetwork:
		return ErrNetwork
	case CodeAborted:
		return ErrRecognitionAborted
	default:
		return fmt.Errorf("%w: %s", ErrTranscriptionFailed, code)
	}
}
