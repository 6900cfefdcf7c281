package entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

// outcome pairs a user-facing message with how long the error state
// stays on screen before auto-returning to idle. Configuration-level
// failures display longer than transient ones.
type outcome struct {
	message string
	delay   time.Duration
}

func classify(err error, transcript string, transientDelay, fatalDelay time.Duration) outcome {
	switch {
	case errors.Is(err, ErrUpgradeRequired):
		return outcome{
			message: "Voice entry is a premium feature. Upgrade your plan to log readings by voice.",
			delay:   transientDelay,
		}
	case errors.Is(err, capture.ErrPermissionDenied):
		return outcome{
			message: "Microphone access denied. Please allow microphone permissions and try again.",
			delay:   fatalDelay,
		}
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return outcome{
			message: "No microphone found. Please connect a microphone and try again.",
			delay:   fatalDelay,
		}
	case errors.Is(err, capture.ErrCaptureUnsupported):
		return outcome{
			message: "Voice recording isn't supported on this device.",
			delay:   fatalDelay,
		}
	case errors.Is(err, transcribe.ErrInvalidCredentials):
		return outcome{
			message: "The voice service is misconfigured. Please try again later.",
			delay:   fatalDelay,
		}
	case errors.Is(err, capture.ErrEmptyCapture),
		errors.Is(err, transcribe.ErrNoSpeechDetected):
		return outcome{
			message: "No speech detected. Please try again and speak clearly.",
			delay:   transientDelay,
		}
	case errors.Is(err, ErrNoMetricsDetected):
		// Echo the transcript so the user can judge why nothing
		// matched.
		return outcome{
			message: fmt.Sprintf("Heard %q, but no health readings were recognized. Try something like \"blood pressure 120 over 80\".", transcript),
			delay:   transientDelay,
		}
	case errors.Is(err, transcribe.ErrRateLimited),
		errors.Is(err, transcribe.ErrServiceUnavailable),
		errors.Is(err, transcribe.ErrNetwork),
		errors.Is(err, transcribe.ErrTimeout):
		return outcome{
			message: "Couldn't reach the transcription service. Please try again.",
			delay:   transientDelay,
		}
	default:
		return outcome{
			message: "Something went wrong. Please try again.",
			delay:   transientDelay,
		}
	}
}
