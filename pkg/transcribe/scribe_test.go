package transcribe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pulsekit/vitalvoice/pkg/capture"
	"github.com/pulsekit/vitalvoice/pkg/transcribe"
)

func testAudio(t *testing.T, n int) *capture.AudioBuffer {
	t.Helper()
	buf, err := capture.NewAudioBuffer(make([]byte, n), "audio/wav")
	if err != nil {
		t.Fatalf("test audio: %v", err)
	}
	return buf
}

func newScribe(t *testing.T, baseURL string, opts ...transcribe.Option) *transcribe.Scribe {
	t.Helper()
	all := append([]transcribe.Option{
		transcribe.WithAPIKey("test-key"),
		transcribe.WithBaseURL(baseURL),
	}, opts...)
	s, err := transcribe.NewScribe(all...)
	if err != nil {
		t.Fatalf("new scribe: %v", err)
	}
	return s
}

func TestScribeTranscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("sends form fields and normalizes response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("xi-api-key"); got != "test-key" {
				t.Errorf("missing api key header, got %q", got)
			}
			if err := r.ParseMultipartForm(8 << 20); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if got := r.FormValue("model_id"); got != "scribe_v1" {
				t.Errorf("model_id = %q", got)
			}
			if got := r.FormValue("language"); got != "en" {
				t.Errorf("language = %q", got)
			}
			if got := r.FormValue("timestamp_granularities"); got != "segment" {
				t.Errorf("timestamp_granularities = %q", got)
			}
			if got := r.FormValue("response_format"); got != "json" {
				t.Errorf("response_format = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"text":"hello world","language":"en","duration":1.5,"segments":[{"start":0,"end":1.5,"text":"hello world"}]}`))
		}))
		defer srv.Close()

		res, err := newScribe(t, srv.URL).Transcribe(ctx, testAudio(t, 128), transcribe.Options{Language: "en"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "hello world" {
			t.Errorf("text = %q", res.Text)
		}
		if len(res.Segments) != 1 || res.Segments[0].End != 1.5 {
			t.Errorf("segments = %+v", res.Segments)
		}
	})

	t.Run("partially-shaped response normalizes to zero values", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		res, err := newScribe(t, srv.URL).Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "" || res.Duration != 0 {
			t.Errorf("expected zero values, got %+v", res)
		}
		if res.Segments == nil || len(res.Segments) != 0 {
			t.Errorf("expected empty segments, got %v", res.Segments)
		}
		if !res.Empty() {
			t.Error("expected Empty() for blank transcript")
		}
	})

	t.Run("status codes map to sentinel errors", func(t *testing.T) {
		cases := []struct {
			status int
			want   error
		}{
			{401, transcribe.ErrInvalidCredentials},
			{429, transcribe.ErrRateLimited},
			{500, transcribe.ErrServiceUnavailable},
			{503, transcribe.ErrServiceUnavailable},
			{400, transcribe.ErrTranscriptionFailed},
		}
		for _, tc := range cases {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))

			_, err := newScribe(t, srv.URL).Transcribe(ctx, testAudio(t, 64), transcribe.Options{})
			if !errors.Is(err, tc.want) {
				t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
			}
			var apiErr *transcribe.APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "nope" {
				t.Errorf("status %d: expected APIError with message, got %v", tc.status, err)
			}
			srv.Close()
		}
	})

	t.Run("oversized payload rejected before any network call", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer srv.Close()

		s := newScribe(t, srv.URL, transcribe.WithMaxAudioBytes(100))
		_, err := s.Transcribe(ctx, testAudio(t, 101), transcribe.Options{})
		if !errors.Is(err, transcribe.ErrPayloadTooLarge) {
			t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
		}
		if hits.Load() != 0 {
			t.Errorf("expected no network call, got %d", hits.Load())
		}
	})

	t.Run("missing api key rejected at construction", func(t *testing.T) {
		_, err := transcribe.NewScribe()
		if !errors.Is(err, transcribe.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestDecodeBase64Audio(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := transcribe.DecodeBase64Audio("aGVsbG8=", 1024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("got %q", data)
		}
	})

	t.Run("estimated size rejected before decode", func(t *testing.T) {
		big := make([]byte, 2000)
		for i := range big {
			big[i] = 'A'
		}
		_, err := transcribe.DecodeBase64Audio(string(big), 1000)
		if !errors.Is(err, transcribe.ErrPayloadTooLarge) {
			t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
		}
	})

	t.Run("invalid base64", func(t *testing.T) {
		if _, err := transcribe.DecodeBase64Audio("!!!not base64!!!", 1024); err == nil {
			t.Fatal("expected error")
		}
	})
}
