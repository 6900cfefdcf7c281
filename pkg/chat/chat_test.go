package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/playback"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
	"github.com/pulsekit/vitalvoice/pkg/tts"
)

func chatSource(t *testing.T, opts ...capture.MockOption) *capture.MockSource {
	t.Helper()
	cfg := capture.DefaultConfig()
	cfg.BufferDuration = 5 * time.Millisecond
	return capture.NewMockSource(cfg, nil, opts...)
}

func TestConverse(t *testing.T) {
	source := chatSource(t, capture.WithSineWave(440, 0.5))
	speech := tts.NewMock()
	player := &playback.MockPlayer{}
	responder := NewScriptedResponder(WithPicker(func(int) int { return 0 }))

	var mu sync.Mutex
	var states []State
	o := NewOrchestrator(source, transcribe.FixedMock("my blood pressure is 120 over 80"), responder, speech, player,
		WithMaxTurnDuration(30*time.Millisecond),
		WithStateHook(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)

	turn, err := o.Converse(context.Background())
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if turn.ID == "" {
		t.Error("turn has no ID")
	}
	if turn.Transcript != "my blood pressure is 120 over 80" {
		t.Errorf("transcript = %q", turn.Transcript)
	}
	if !strings.Contains(strings.ToLower(turn.Reply), "blood pressure") {
		t.Errorf("reply %q does not address blood pressure", turn.Reply)
	}
	if turn.Spoken <= 0 {
		t.Errorf("spoken duration = %v", turn.Spoken)
	}

	if got := speech.Calls(); len(got) != 1 || got[0] != turn.Reply {
		t.Errorf("synthesized %v, want one call with the reply", got)
	}
	if got := player.Plays(); len(got) != 1 || got[0] == 0 {
		t.Errorf("played %v, want one non-empty clip", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateListening, StateProcessing, StateSpeaking, StateIdle}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state[%d] = %q, want %q (full: %v)", i, states[i], want[i], states)
		}
	}
	if o.State() != StateIdle {
		t.Errorf("final state = %q", o.State())
	}
	if source.Running() {
		t.Error("source still running after turn")
	}
}

func TestConverseEmptyTranscript(t *testing.T) {
	source := chatSource(t, capture.WithSineWave(440, 0.5))
	player := &playback.MockPlayer{}
	o := NewOrchestrator(source, transcribe.FixedMock(""), NewScriptedResponder(), tts.NewMock(), player,
		WithMaxTurnDuration(30*time.Millisecond))

	_, err := o.Converse(context.Background())
	if !errors.Is(err, transcribe.ErrNoSpeechDetected) {
		t.Fatalf("err = %v, want ErrNoSpeechDetected", err)
	}
	if len(player.Plays()) != 0 {
		t.Error("played audio for an empty turn")
	}
	if o.State() != StateIdle {
		t.Errorf("state = %q, want idle", o.State())
	}
}

func TestConverseSynthesisFailure(t *testing.T) {
	source := chatSource(t, capture.WithSineWave(440, 0.5))
	player := &playback.MockPlayer{}
	o := NewOrchestrator(source, transcribe.FixedMock("hello there"), NewScriptedResponder(),
		tts.WithError(tts.ErrProviderUnavailable), player,
		WithMaxTurnDuration(30*time.Millisecond))

	_, err := o.Converse(context.Background())
	if !errors.Is(err, tts.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if len(player.Plays()) != 0 {
		t.Error("played audio despite synthesis failure")
	}
}

func TestConverseStopListening(t *testing.T) {
	source := chatSource(t, capture.WithSineWave(440, 0.5))
	player := &playback.MockPlayer{}
	o := NewOrchestrator(source, transcribe.FixedMock("heart rate is 72"), NewScriptedResponder(WithPicker(func(int) int { return 0 })), tts.NewMock(), player,
		WithMaxTurnDuration(5*time.Second))

	done := make(chan struct{})
	var turn *Turn
	var err error
	go func() {
		defer close(done)
		turn, err = o.Converse(context.Background())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for o.State() != StateListening && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(15 * time.Millisecond)
	o.StopListening()

	<-done
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if turn.Transcript != "heart rate is 72" {
		t.Errorf("transcript = %q", turn.Transcript)
	}
}

func TestScriptedResponder(t *testing.T) {
	r := NewScriptedResponder(WithPicker(func(int) int { return 0 }))
	ctx := context.Background()

	tests := []struct {
		name       string
		transcript string
		contains   string
	}{
		{"greeting", "Hello, how are you?", "Hi!"},
		{"blood pressure", "my blood pressure is high today", "blood pressure"},
		{"weight", "I weigh 150 pounds", "Weight noted"},
		{"glucose", "blood sugar was 95 this morning", "Glucose"},
		{"thanks", "thank you so much", "welcome"},
		{"fallback", "the weather is nice", "track your health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := r.Reply(ctx, tt.transcript)
			if err != nil {
				t.Fatalf("Reply: %v", err)
			}
			if !strings.Contains(reply, tt.contains) {
				t.Errorf("reply %q does not contain %q", reply, tt.contains)
			}
		})
	}
}

func TestScriptedResponderCustomRuleWins(t *testing.T) {
	r := NewScriptedResponder(
		WithRule([]string{"blood pressure"}, "custom reply"),
		WithPicker(func(int) int { return 0 }),
	)
	reply, err := r.Reply(context.Background(), "blood pressure 120 over 80")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply != "custom reply" {
		t.Errorf("reply = %q, want custom rule to take precedence", reply)
	}
}
