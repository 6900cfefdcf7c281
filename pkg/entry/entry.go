// Package entry orchestrates one voice data-entry flow at a time:
// capture, transcription, metric extraction, and hand-off to the form
// collaborator, tracking the UI-relevant state throughout.
package entry

import (
	"errors"

	"github.com/pulsekit/vitalvoice/pkg/extract"
)

// State is the UI-facing flow state.
type State string

const (
	StateIdle                 State = "idle"
	StateRequestingPermission State = "requesting_permission"
	StateRecording            State = "recording"
	StateProcessing           State = "processing"
	StateSuccess              State = "success"
	StateError                State = "error"
)

// Sentinel errors surfaced by the flow.
var (
	// ErrUpgradeRequired is the gated outcome: a non-premium user
	// tried to start a voice entry. Raised before any hardware
	// access, so no permission prompt ever appears for gated users.
	ErrUpgradeRequired = errors.New("entry: voice entry requires an upgraded plan")

	// ErrNoMetricsDetected means transcription succeeded but the
	// transcript contained no recognizable readings.
	ErrNoMetricsDetected = errors.New("entry: no health readings recognized")
)

// FormSink receives the extracted metrics of a successful flow,
// exactly once, after the success display delay.
type FormSink interface {
	Apply(metrics extract.Metrics)
}

// FormSinkFunc adapts a function to FormSink.
type FormSinkFunc func(metrics extract.Metrics)

// Apply implements FormSink.
func (f FormSinkFunc) Apply(metrics extract.Metrics) {
	f(metrics)
}

// Gate decides whether a user may start a voice entry. The check runs
// synchronously before any hardware access is requested.
type Gate interface {
	AllowVoiceEntry(userID string) bool
}

// GateFunc adapts a function to Gate.
type GateFunc func(userID string) bool

// AllowVoiceEntry implements Gate.
func (f GateFunc) AllowVoiceEntry(userID string) bool {
	return f(userID)
}
