package capture

import "errors"

// Sentinel errors for capture failures. Transcription fallbacks
// normalize platform recognizer codes onto the same values so callers
// need a single handling branch.
var (
	// ErrPermissionDenied is returned when the user or OS declines
	// microphone access.
	ErrPermissionDenied = errors.New("capture: microphone permission denied")

	// ErrDeviceUnavailable is returned when no capture device exists.
	ErrDeviceUnavailable = errors.New("capture: no audio capture device available")

	// ErrCaptureUnsupported is returned when the runtime lacks
	// recording capability.
	ErrCaptureUnsupported = errors.New("capture: audio capture not supported")

	// ErrEmptyCapture is returned when recording stopped with zero
	// collected bytes. Callers must not conflate this with silence
	// transcribed as an empty string.
	ErrEmptyCapture = errors.New("capture: no audio data collected")

	// ErrAlreadyRecording is returned by Record while another
	// recording is in flight on the same session.
	ErrAlreadyRecording = errors.New("capture: recording already in progress")
)
