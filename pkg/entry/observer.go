package entry

import "github.com/pulsekit/vitalvoice/pkg/extract"

// Observer receives lifecycle events at defined points of a flow.
// Telemetry hangs off these hooks instead of being interleaved with
// the control flow. All fields are optional.
type Observer struct {
	OnStateChange         func(from, to State)
	OnCaptureStart        func()
	OnCaptureStop         func(bytes int)
	OnTranscriptionStart  func()
	OnTranscriptionResult func(text string)
	OnTranscriptionError  func(err error)
	OnExtractionResult    func(metrics extract.Metrics)
}

func (o *Observer) stateChange(from, to State) {
	if o != nil && o.OnStateChange != nil {
		o.OnStateChange(from, to)
	}
}

func (o *Observer) captureStart() {
	if o != nil && o.OnCaptureStart != nil {
		o.OnCaptureStart()
	}
}

func (o *Observer) captureStop(bytes int) {
	if o != nil && o.OnCaptureStop != nil {
		o.OnCaptureStop(bytes)
	}
}

func (o *Observer) transcriptionStart() {
	if o != nil && o.OnTranscriptionStart != nil {
		o.OnTranscriptionStart()
	}
}

func (o *Observer) transcriptionResult(text string) {
	if o != nil && o.OnTranscriptionResult != nil {
		o.OnTranscriptionResult(text)
	}
}

func (o *Observer) transcriptionError(err error) {
	if o != nil && o.OnTranscriptionError != nil {
		o.OnTranscriptionError(err)
	}
}

func (o *Observer) extractionResult(metrics extract.Metrics) {
	if o != nil && o.OnExtractionResult != nil {
		o.OnExtractionResult(metrics)
	}
}
