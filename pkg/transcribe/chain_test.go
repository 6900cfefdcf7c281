package transcribe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("primary success skips fallback", func(t *testing.T) {
		fallback := &transcribe.MockRecognizer{}
		chain := transcribe.NewChain(transcribe.FixedMock("hello"), fallback)

		res, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{Language: "en"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "hello" {
			t.Errorf("text = %q", res.Text)
		}
		if fallback.Calls() != 0 {
			t.Errorf("fallback called %d times", fallback.Calls())
		}
	})

	t.Run("rate limit falls back to platform recognizer", func(t *testing.T) {
		fallback := &transcribe.MockRecognizer{
			RecognizeFunc: func(ctx context.Context, audio *capture.AudioBuffer, language string) (*transcribe.Result, error) {
				return &transcribe.Result{Text: "fallback heard this", Language: language}, nil
			},
		}
		chain := transcribe.NewChain(transcribe.FailingMock(transcribe.ErrRateLimited), fallback)

		res, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{Language: "en"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "fallback heard this" {
			t.Errorf("text = %q", res.Text)
		}
		if fallback.Calls() != 1 {
			t.Errorf("fallback called %d times", fallback.Calls())
		}
	})

	t.Run("oversized payload never reaches fallback", func(t *testing.T) {
		fallback := &transcribe.MockRecognizer{}
		chain := transcribe.NewChain(transcribe.FailingMock(transcribe.ErrPayloadTooLarge), fallback)

		_, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
		if !errors.Is(err, transcribe.ErrPayloadTooLarge) {
			t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
		}
		if fallback.Calls() != 0 {
			t.Errorf("fallback called %d times", fallback.Calls())
		}
	})

	t.Run("unavailable fallback surfaces primary error", func(t *testing.T) {
		fallback := &transcribe.MockRecognizer{Unavailable: true}
		chain := transcribe.NewChain(transcribe.FailingMock(transcribe.ErrServiceUnavailable), fallback)

		_, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
		if !errors.Is(err, transcribe.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		if fallback.Calls() != 0 {
			t.Errorf("fallback called %d times", fallback.Calls())
		}
	})

	t.Run("both paths failing aggregates errors", func(t *testing.T) {
		fallback := &transcribe.MockRecognizer{
			RecognizeFunc: func(ctx context.Context, audio *capture.AudioBuffer, language string) (*transcribe.Result, error) {
				return nil, transcribe.NormalizeRecognizerCode(transcribe.CodeNoSpeech)
			},
		}
		chain := transcribe.NewChain(transcribe.FailingMock(transcribe.ErrServiceUnavailable), fallback)

		_, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
		if !errors.Is(err, transcribe.ErrNoSpeechDetected) {
			t.Fatalf("expected ErrNoSpeechDetected from fallback, got %v", err)
		}
		var chainErr *transcribe.ChainError
		if !errors.As(err, &chainErr) || len(chainErr.Errors) != 2 {
			t.Fatalf("expected ChainError with 2 errors, got %v", err)
		}
	})

	t.Run("nil fallback surfaces primary error", func(t *testing.T) {
		chain := transcribe.NewChain(transcribe.FailingMock(transcribe.ErrNetwork), nil)
		_, err := chain.Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
		if !errors.Is(err, transcribe.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})
}

func TestNormalizeRecognizerCode(t *testing.T) {
	cases := map[string]error{
		transcribe.CodeNoSpeech:     transcribe.ErrNoSpeechDetected,
		transcribe.CodeAudioCapture: capture.ErrDeviceUnavailable,
		transcribe.CodeNotAllowed:   capture.ErrPermissionDenied,
		transcribe.CodeNetwork:      transcribe.ErrNetwork,
		transcribe.CodeAborted:      transcribe.ErrRecognitionAborted,
	}
	for code, want := range cases {
		if got := transcribe.NormalizeRecognizerCode(code); !errors.Is(got, want) {
			t.Errorf("code %q: got %v, want %v", code, got, want)
		}
	}
	if got := transcribe.NormalizeRecognizerCode("bogus"); !errors.Is(got, transcribe.ErrTranscriptionFailed) {
		t.Errorf("unknown code: got %v", got)
	}
}
