package entry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/extract"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

// Defaults for the flow's timing behavior.
const (
	DefaultMaxRecordDuration = 8 * time.Second
	DefaultSuccessDelay      = 1200 * time.Millisecond
	DefaultTransientDelay    = 3 * time.Second
	DefaultFatalDelay        = 5 * time.Second
)

// Machine runs one voice-entry flow at a time. A tap while a flow is
// mid-flight is a no-op; every flow, successful or not, returns the
// machine to idle so the next tap starts clean. Nothing here is fatal
// to the process.
type Machine struct {
	session     *capture.Session
	transcriber transcribe.Transcriber
	sink        FormSink
	gate        Gate
	observer    *Observer
	logger      *slog.Logger

	maxRecord      time.Duration
	successDelay   time.Duration
	transientDelay time.Duration
	fatalDelay     time.Duration
	language       string
	model          string

	mu         sync.Mutex
	state      State
	gen        uint64 // flow generation; stale callbacks are discarded
	cancelFlow context.CancelFunc
	resetTimer *time.Timer
	message    string
	lastErr    error
	transcript string
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithGate sets the premium gate checked before any hardware access.
func WithGate(gate Gate) MachineOption {
	return func(m *Machine) {
		m.gate = gate
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o *Observer) MachineOption {
	return func(m *Machine) {
		m.observer = o
	}
}

// WithMachineLogger sets the structured logger.
func WithMachineLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger.With("component", "entry.machine")
	}
}

// WithMaxRecordDuration bounds the recording phase.
func WithMaxRecordDuration(d time.Duration) MachineOption {
	return func(m *Machine) {
		m.maxRecord = d
	}
}

// WithDisplayDelays tunes the auto-reset timers for the success state
// and for transient and configuration-level errors.
func WithDisplayDelays(success, transient, fatal time.Duration) MachineOption {
	return func(m *Machine) {
		m.successDelay = success
		m.transientDelay = transient
		m.fatalDelay = fatal
	}
}

// WithLanguage sets the transcription language and model.
func WithLanguage(language, model string) MachineOption {
	return func(m *Machine) {
		m.language = language
		m.model = model
	}
}

// NewMachine creates a voice-entry state machine over a capture
// source and a transcriber.
func NewMachine(source capture.Source, transcriber transcribe.Transcriber, sink FormSink, opts ...MachineOption) *Machine {
	m := &Machine{
		transcriber:    transcriber,
		sink:           sink,
		logger:         slog.Default().With("component", "entry.machine"),
		maxRecord:      DefaultMaxRecordDuration,
		successDelay:   DefaultSuccessDelay,
		transientDelay: DefaultTransientDelay,
		fatalDelay:     DefaultFatalDelay,
		language:       "en",
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.session = capture.NewSession(source,
		capture.WithLogger(m.logger),
		capture.WithStartNotify(m.onCaptureStarted),
	)
	return m
}

// State returns the current flow state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Message returns the user-facing message for the current error
// state, or "" when not in error.
func (m *Machine) Message() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.message
}

// Err returns the error behind the current error state.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Transcript returns the transcript of the last completed flow.
func (m *Machine) Transcript() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript
}

// Start handles the mic tap. While a flow is mid-flight (state not
// idle or error) the tap is a no-op. Gated users are blocked here,
// before any permission prompt.
func (m *Machine) Start(ctx context.Context, userID string) {
	m.mu.Lock()

	if m.state != StateIdle && m.state != StateError {
		m.mu.Unlock()
		return
	}
	m.stopResetTimerLocked()

	if m.gate != nil && !m.gate.AllowVoiceEntry(userID) {
		m.failLocked(m.gen, ErrUpgradeRequired, "")
		m.mu.Unlock()
		return
	}

	m.gen++
	gen := m.gen
	flowCtx, cancel := context.WithCancel(ctx)
	m.cancelFlow = cancel
	m.message = ""
	m.lastErr = nil
	m.setStateLocked(StateRequestingPermission)
	m.mu.Unlock()

	go m.run(flowCtx, gen)
}

// StopRecording handles a tap while recording: it ends the capture
// early and lets the flow continue into processing.
func (m *Machine) StopRecording() {
	m.mu.Lock()
	recording := m.state == StateRecording
	m.mu.Unlock()
	if recording {
		m.session.Stop()
	}
}

// Cancel aborts any in-flight flow, releases the microphone, and
// resets to idle. A transcription completing after Cancel is
// discarded, never applied to the form.
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.gen++ // invalidate in-flight callbacks and timers
	cancel := m.cancelFlow
	m.cancelFlow = nil
	m.stopResetTimerLocked()
	m.setStateLocked(StateIdle)
	m.message = ""
	m.lastErr = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.session.Stop()
}

// run executes one flow. Capture fully completes (hardware released)
// before transcription starts; transcription fully completes before
// extraction runs.
func (m *Machine) run(ctx context.Context, gen uint64) {
	defer func() {
		m.mu.Lock()
		if gen == m.gen && m.cancelFlow != nil {
			m.cancelFlow()
			m.cancelFlow = nil
		}
		m.mu.Unlock()
	}()

	audio, err := m.session.Record(ctx, m.maxRecord)
	if err != nil {
		m.fail(gen, err, "")
		return
	}
	m.observer.captureStop(audio.Len())

	if !m.transition(gen, StateProcessing) {
		return
	}

	m.observer.transcriptionStart()
	result, err := m.transcriber.Transcribe(ctx, audio, transcribe.Options{
		Language: m.language,
		Model:    m.model,
	})
	if err != nil {
		m.observer.transcriptionError(err)
		m.fail(gen, err, "")
		return
	}
	if result.Empty() {
		m.fail(gen, transcribe.ErrNoSpeechDetected, "")
		return
	}
	m.observer.transcriptionResult(result.Text)

	metrics := extract.Extract(result.Text)
	m.observer.extractionResult(metrics)
	if len(metrics) == 0 {
		m.fail(gen, ErrNoMetricsDetected, result.Text)
		return
	}

	m.succeed(gen, result.Text, metrics)
}

// onCaptureStarted flips requesting_permission into recording once
// the device is actually acquired.
func (m *Machine) onCaptureStarted() {
	m.mu.Lock()
	if m.state == StateRequestingPermission {
		m.setStateLocked(StateRecording)
	}
	m.mu.Unlock()
	m.observer.captureStart()
}

// transition moves to the target state unless the flow is stale.
func (m *Machine) transition(gen uint64, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.setStateLocked(to)
	return true
}

// succeed shows the success state, then applies the metrics to the
// form sink exactly once after the display delay. The delayed
// hand-off avoids the flicker of closing one modal while the next
// opens.
func (m *Machine) succeed(gen uint64, transcript string, metrics extract.Metrics) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.transcript = transcript
	m.setStateLocked(StateSuccess)
	m.resetTimer = time.AfterFunc(m.successDelay, func() {
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.setStateLocked(StateIdle)
		m.mu.Unlock()

		m.sink.Apply(metrics)
	})
	m.mu.Unlock()

	m.logger.Info("voice entry complete",
		"metrics", len(metrics),
		"chars", len(transcript),
	)
}

// fail shows the error state, then auto-returns to idle.
func (m *Machine) fail(gen uint64, err error, transcript string) {
	m.mu.Lock()
	m.failLocked(gen, err, transcript)
	m.mu.Unlock()
}

func (m *Machine) failLocked(gen uint64, err error, transcript string) {
	if gen != m.gen {
		return
	}
	out := classify(err, transcript, m.transientDelay, m.fatalDelay)
	m.lastErr = err
	m.message = out.message
	if transcript != "" {
		m.transcript = transcript
	}
	m.setStateLocked(StateError)

	m.logger.Warn("voice entry failed", "error", err)

	m.resetTimer = time.AfterFunc(out.delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen {
			return
		}
		m.setStateLocked(StateIdle)
		m.message = ""
	})
}

func (m *Machine) setStateLocked(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	m.observer.stateChange(from, to)
}

func (m *Machine) stopResetTimerLocked() {
	if m.resetTimer != nil {
		m.resetTimer.Stop()
		m.resetTimer = nil
	}
}
