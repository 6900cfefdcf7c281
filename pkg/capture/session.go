package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Session records from a Source for a bounded duration and yields the
// collected audio as one WAV-encoded AudioBuffer.
//
// At most one recording may be in flight per Session; a second Record
// call fails fast with ErrAlreadyRecording. The underlying device is
// released on every exit path: normal completion, manual stop, error,
// and caller-side cancellation.
type Session struct {
	source  Source
	logger  *slog.Logger
	onStart func()

	mu        sync.Mutex
	recording bool
	stopCh    chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the structured logger for the session.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger.With("component", "capture.session")
	}
}

// WithStartNotify sets a callback fired once the device is acquired
// and recording has actually begun. Orchestrators use it to flip
// their state from "requesting permission" to "recording".
func WithStartNotify(fn func()) SessionOption {
	return func(s *Session) {
		s.onStart = fn
	}
}

// NewSession creates a Session over the given source.
func NewSession(source Source, opts ...SessionOption) *Session {
	s := &Session{
		source: source,
		logger: slog.Default().With("component", "capture.session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record requests device access, records until maxDuration elapses,
// Stop is called, or ctx is cancelled, then returns the collected
// audio as a WAV buffer. Zero collected bytes is ErrEmptyCapture,
// never an empty buffer.
func (s *Session) Record(ctx context.Context, maxDuration time.Duration) (*AudioBuffer, error) {
	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return nil, ErrAlreadyRecording
	}
	s.recording = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.recording = false
		s.stopCh = nil
		s.mu.Unlock()
	}()

	if err := s.source.Start(ctx); err != nil {
		return nil, fmt.Errorf("acquire source: %w", err)
	}
	defer s.source.Stop()

	if s.onStart != nil {
		s.onStart()
	}

	cfg := s.source.Config()
	s.logger.Debug("recording started",
		"backend", s.source.Name(),
		"sample_rate", cfg.SampleRate,
		"max_duration_ms", maxDuration.Milliseconds(),
	)

	timer := time.NewTimer(maxDuration)
	defer timer.Stop()

	var samples []int16
collect:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			break collect
		case <-timer.C:
			break collect
		case chunk, ok := <-s.source.Stream():
			if !ok {
				break collect
			}
			samples = append(samples, chunk.Samples...)
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyCapture
	}

	data, err := encodeWAV(samples, cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}

	s.logger.Debug("recording complete",
		"samples", len(samples),
		"bytes", len(data),
	)

	return NewAudioBuffer(data, "audio/wav")
}

// Stop ends an in-flight recording early. Audio collected so far is
// still returned by Record. Safe to call multiple times or when no
// recording is active.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording && s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// Recording reports whether a recording is currently in flight.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}
