package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

const recognizerChunkBytes = 8192

// StreamRecognizer implements Recognizer over a websocket streaming
// recognition service. The session is strictly one-shot: the captured
// audio is streamed up, a finalize marker is sent, and the single
// final alternative is returned.
type StreamRecognizer struct {
	url     string
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger
	dialer  *websocket.Dialer
}

// StreamOption configures a StreamRecognizer.
type StreamOption func(*StreamRecognizer)

// WithRecognizerKey sets the API key sent on the connection.
func WithRecognizerKey(key string) StreamOption {
	return func(r *StreamRecognizer) {
		r.apiKey = key
	}
}

// WithRecognizerTimeout bounds the whole recognition session.
func WithRecognizerTimeout(d time.Duration) StreamOption {
	return func(r *StreamRecognizer) {
		r.timeout = d
	}
}

// WithRecognizerLogger sets the structured logger.
func WithRecognizerLogger(logger *slog.Logger) StreamOption {
	return func(r *StreamRecognizer) {
		r.logger = logger.With("component", "transcribe.recognizer")
	}
}

// NewStreamRecognizer creates a recognizer for the given websocket
// endpoint. An empty URL yields an unavailable recognizer, which a
// Chain treats as "no fallback configured".
func NewStreamRecognizer(wsURL string, opts ...StreamOption) *StreamRecognizer {
	r := &StreamRecognizer{
		url:     wsURL,
		timeout: 30 * time.Second,
		logger:  slog.Default().With("component", "transcribe.recognizer"),
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether an endpoint is configured.
func (r *StreamRecognizer) Available() bool {
	return r.url != ""
}

// recognizerMessage is the service's response frame.
type recognizerMessage struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"is_final"`
	Error      string  `json:"error,omitempty"`
}

// Recognize streams the audio and waits for the single final result.
func (r *StreamRecognizer) Recognize(ctx context.Context, audio *capture.AudioBuffer, language string) (*Result, error) {
	if !r.Available() {
		return nil, ErrNoRecognizer
	}
	if audio == nil || audio.Len() == 0 {
		return nil, capture.ErrEmptyCapture
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("recognizer url: %w", err)
	}
	q := u.Query()
	q.Set("language", language)
	q.Set("interim_results", "false")
	u.RawQuery = q.Encode()

	header := http.Header{}
	if r.apiKey != "" {
		header.Set("Authorization", "Token "+r.apiKey)
	}

	conn, _, err := r.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer conn.Close()

	// Unblock reads when the context ends.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	data := audio.Bytes()
	for off := 0; off < len(data); off += recognizerChunkBytes {
		end := off + recognizerChunkBytes
		if end > len(data) {
			end = len(data)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data[off:end]); err != nil {
			return nil, fmt.Errorf("%w: send audio: %v", ErrNetwork, err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"finalize"}`)); err != nil {
		return nil, fmt.Errorf("%w: finalize: %v", ErrNetwork, err)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, mapCtxErr(ctx.Err())
			}
			return nil, fmt.Errorf("%w: read: %v", ErrNetwork, err)
		}

		var msg recognizerMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, fmt.Errorf("decode recognizer message: %w", err)
		}
		if msg.Error != "" {
			return nil, NormalizeRecognizerCode(msg.Error)
		}
		if !msg.IsFinal {
			continue
		}

		r.logger.Debug("recognition complete",
			"chars", len(msg.Transcript),
			"confidence", msg.Confidence,
		)
		return &Result{
			Text:     msg.Transcript,
			Language: language,
			Segments: []Segment{},
		}, nil
	}
}

func mapCtxErr(err error) error {
	if err == context.DeadlineExceeded {
		return ErrTimeout
	}
	return err
}

var _ Recognizer = (*StreamRecognizer)(nil)
