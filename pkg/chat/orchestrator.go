// Package chat runs conversational voice turns: capture the user's
// speech, transcribe it, generate a reply, and speak it back.
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/playback"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
	"github.com/pulsekit/vitalvoice/pkg/tts"
)

// State is the conversational flow state. It mirrors the entry flow
// but replaces the metric hand-off with a speaking phase.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

// DefaultMaxTurnDuration bounds one listening phase.
const DefaultMaxTurnDuration = 15 * time.Second

// Turn is the record of one completed exchange.
type Turn struct {
	ID         string
	Transcript string
	Reply      string
	Spoken     time.Duration
	StartedAt  time.Time
}

// Orchestrator runs one voice chat turn at a time. It reuses the
// capture session and transcriber from the entry flow and adds speech
// synthesis and playback.
type Orchestrator struct {
	session     *capture.Session
	transcriber transcribe.Transcriber
	responder   Responder
	speech      tts.Provider
	player      playback.Player
	logger      *slog.Logger

	maxTurn  time.Duration
	language string
	onState  func(State)

	mu    sync.Mutex
	state State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger.With("component", "chat.orchestrator")
	}
}

// WithMaxTurnDuration bounds the listening phase of each turn.
func WithMaxTurnDuration(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.maxTurn = d
	}
}

// WithLanguage sets the transcription language.
func WithLanguage(language string) Option {
	return func(o *Orchestrator) {
		o.language = language
	}
}

// WithStateHook registers a callback fired on every state change.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.onState = fn
	}
}

// NewOrchestrator wires a chat flow over the given collaborators.
func NewOrchestrator(source capture.Source, transcriber transcribe.Transcriber, responder Responder, speech tts.Provider, player playback.Player, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transcriber: transcriber,
		responder:   responder,
		speech:      speech,
		player:      player,
		logger:      slog.Default().With("component", "chat.orchestrator"),
		maxTurn:     DefaultMaxTurnDuration,
		language:    "en",
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.session = capture.NewSession(source,
		capture.WithLogger(o.logger),
		capture.WithStartNotify(func() { o.setState(StateListening) }),
	)
	return o
}

// State returns the current flow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// StopListening ends the listening phase early, moving the turn into
// processing with whatever audio was collected.
func (o *Orchestrator) StopListening() {
	o.session.Stop()
}

// Converse runs one full turn: listen, transcribe, reply, speak.
// It blocks until playback finishes or ctx is cancelled, and always
// returns the orchestrator to idle.
func (o *Orchestrator) Converse(ctx context.Context) (*Turn, error) {
	defer o.setState(StateIdle)

	turn := &Turn{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	audio, err := o.session.Record(ctx, o.maxTurn)
	if err != nil {
		return nil, err
	}

	o.setState(StateProcessing)
	result, err := o.transcriber.Transcribe(ctx, audio, transcribe.Options{Language: o.language})
	if err != nil {
		return nil, err
	}
	if result.Empty() {
		return nil, transcribe.ErrNoSpeechDetected
	}
	turn.Transcript = result.Text

	reply, err := o.responder.Reply(ctx, result.Text)
	if err != nil {
		return nil, err
	}
	turn.Reply = reply

	clip, err := o.speech.Synthesize(ctx, reply)
	if err != nil {
		return nil, err
	}

	o.setState(StateSpeaking)
	if err := o.player.Play(ctx, clip.Audio, clip.Format); err != nil {
		return nil, err
	}
	turn.Spoken = clip.Duration

	o.logger.Info("chat turn complete",
		"turn_id", turn.ID,
		"transcript_chars", len(turn.Transcript),
		"reply_chars", len(turn.Reply),
	)
	return turn, nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	changed := o.state != s
	o.state = s
	o.mu.Unlock()
	if changed && o.onState != nil {
		o.onState(s)
	}
}
