package transcribe

import (
	"context"
	"sync"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

// Mock implements Transcriber for testing. Behavior is customized via
// function fields; calls are recorded for verification.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns an empty result.
	TranscribeFunc func(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error)

	mu    sync.Mutex
	calls int
}

// FixedMock returns a mock that always yields the given transcript.
func FixedMock(text string) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error) {
			return &Result{
				Text:     text,
				Language: opts.Language,
				Segments: []Segment{},
			}, nil
		},
	}
}

// FailingMock returns a mock that always fails with err.
func FailingMock(err error) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error) {
			return nil, err
		},
	}
}

// Transcribe calls TranscribeFunc and records the call.
func (m *Mock) Transcribe(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, opts)
	}
	return &Result{Segments: []Segment{}}, nil
}

// Calls returns the number of Transcribe invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRecognizer implements Recognizer for testing.
type MockRecognizer struct {
	// RecognizeFunc is called when Recognize is invoked.
	RecognizeFunc func(ctx context.Context, audio *capture.AudioBuffer, language string) (*Result, error)

	// Unavailable makes Available report false.
	Unavailable bool

	mu    sync.Mutex
	calls int
}

// Recognize calls RecognizeFunc and records the call.
func (m *MockRecognizer) Recognize(ctx context.Context, audio *capture.AudioBuffer, language string) (*Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, audio, language)
	}
	return &Result{Segments: []Segment{}}, nil
}

// Available reports the configured availability.
func (m *MockRecognizer) Available() bool {
	return !m.Unavailable
}

// Calls returns the number of Recognize invocations.
func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var (
	_ Transcriber = (*Mock)(nil)
	_ Recognizer  = (*MockRecognizer)(nil)
)
