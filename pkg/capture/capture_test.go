package capture_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

func testConfig() capture.Config {
	cfg := capture.DefaultConfig()
	cfg.BufferDuration = 5 * time.Millisecond
	return cfg
}

func TestSessionRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("collects audio and returns wav buffer", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil, capture.WithSineWave(440, 0.5))
		defer src.Close()

		sess := capture.NewSession(src)
		buf, err := sess.Record(ctx, 50*time.Millisecond)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("expected non-empty buffer")
		}
		if buf.MIMEType() != "audio/wav" {
			t.Errorf("expected audio/wav, got %s", buf.MIMEType())
		}
		if src.Running() {
			t.Error("expected source released after record")
		}
	})

	t.Run("zero-byte capture rejects with ErrEmptyCapture", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil, capture.WithNoAudio())
		defer src.Close()

		sess := capture.NewSession(src)
		_, err := sess.Record(ctx, 20*time.Millisecond)
		if !errors.Is(err, capture.ErrEmptyCapture) {
			t.Fatalf("expected ErrEmptyCapture, got %v", err)
		}
	})

	t.Run("second record fails fast with ErrAlreadyRecording", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil, capture.WithSineWave(440, 0.5))
		defer src.Close()

		sess := capture.NewSession(src)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = sess.Record(ctx, 200*time.Millisecond)
		}()

		// Wait for the first recording to be in flight.
		deadline := time.Now().Add(time.Second)
		for !sess.Recording() {
			if time.Now().After(deadline) {
				t.Fatal("first recording never started")
			}
			time.Sleep(time.Millisecond)
		}

		_, err := sess.Record(ctx, 10*time.Millisecond)
		if !errors.Is(err, capture.ErrAlreadyRecording) {
			t.Fatalf("expected ErrAlreadyRecording, got %v", err)
		}

		sess.Stop()
		<-done
	})

	t.Run("start error propagates and releases nothing", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil,
			capture.WithStartError(capture.ErrPermissionDenied))
		defer src.Close()

		sess := capture.NewSession(src)
		_, err := sess.Record(ctx, 20*time.Millisecond)
		if !errors.Is(err, capture.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
		if sess.Recording() {
			t.Error("session should not be left recording")
		}
	})

	t.Run("manual stop ends recording early", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil, capture.WithSineWave(440, 0.5))
		defer src.Close()

		sess := capture.NewSession(src)
		type result struct {
			buf *capture.AudioBuffer
			err error
		}
		resCh := make(chan result, 1)
		go func() {
			buf, err := sess.Record(ctx, 5*time.Second)
			resCh <- result{buf, err}
		}()

		time.Sleep(30 * time.Millisecond)
		sess.Stop()

		select {
		case res := <-resCh:
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if res.buf.Len() == 0 {
				t.Error("expected audio collected before stop")
			}
		case <-time.After(time.Second):
			t.Fatal("record did not return after stop")
		}
		if src.Running() {
			t.Error("expected source released after stop")
		}
	})

	t.Run("cancellation releases the device", func(t *testing.T) {
		src := capture.NewMockSource(testConfig(), nil, capture.WithSineWave(440, 0.5))
		defer src.Close()

		cctx, cancel := context.WithCancel(ctx)
		sess := capture.NewSession(src)
		errCh := make(chan error, 1)
		go func() {
			_, err := sess.Record(cctx, 5*time.Second)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("record did not return after cancel")
		}
		if src.Running() {
			t.Error("expected source released after cancel")
		}
	})
}

func TestSessionStartNotify(t *testing.T) {
	src := capture.NewMockSource(testConfig(), nil, capture.WithSineWave(440, 0.5))
	defer src.Close()

	notified := make(chan struct{}, 1)
	sess := capture.NewSession(src, capture.WithStartNotify(func() {
		notified <- struct{}{}
	}))

	_, err := sess.Record(context.Background(), 30*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-notified:
	default:
		t.Error("expected start notification")
	}
}
