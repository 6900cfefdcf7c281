package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

const (
	scribeBaseURL  = "https://api.elevenlabs.io/v1"
	providerScribe = "scribe"
)

// Scribe implements Transcriber against the ElevenLabs speech-to-text
// API. Audio is uploaded as multipart/form-data with the model,
// language and timestamp granularity fields the service expects.
type Scribe struct {
	config  *Config
	client  *http.Client
	baseURL string
}

// NewScribe creates a remote ASR provider.
func NewScribe(opts ...Option) (*Scribe, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = scribeBaseURL
	}
	cfg.Logger = cfg.Logger.With("component", "transcribe.scribe")

	return &Scribe{
		config:  cfg,
		client:  cfg.HTTPClient,
		baseURL: baseURL,
	}, nil
}

// Transcribe uploads the audio buffer and returns the normalized
// result. Oversized payloads are rejected before any network call.
func (s *Scribe) Transcribe(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error) {
	if audio == nil || audio.Len() == 0 {
		return nil, wrapErr(providerScribe, capture.ErrEmptyCapture)
	}
	if err := CheckSize(audio.Len(), s.config.MaxAudioBytes); err != nil {
		return nil, wrapErr(providerScribe, err)
	}

	body, contentType, err := s.buildForm(audio, opts)
	if err != nil {
		return nil, wrapErr(providerScribe, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/speech-to-text", body)
	if err != nil {
		return nil, wrapErr(providerScribe, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", s.config.APIKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, wrapErr(providerScribe, ErrTimeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, wrapErr(providerScribe, fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.parseError(resp)
	}

	raw := &rawResult{}
	if err := json.NewDecoder(resp.Body).Decode(raw); err != nil {
		return nil, wrapErr(providerScribe, fmt.Errorf("decode response: %w", err))
	}

	result := normalize(raw)
	s.config.Logger.Debug("transcription complete",
		"bytes", audio.Len(),
		"chars", len(result.Text),
		"segments", len(result.Segments),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// buildForm assembles the multipart request body.
func (s *Scribe) buildForm(audio *capture.AudioBuffer, opts Options) (io.Reader, string, error) {
	model := opts.Model
	if model == "" {
		model = s.config.ModelID
	}
	language := opts.Language
	if language == "" {
		language = s.config.Language
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio.Bytes()); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}

	fields := map[string]string{
		"model_id":                model,
		"language":                language,
		"timestamp_granularities": strings.Join(s.config.Granularities, ","),
		"response_format":         "json",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

// parseError reads and classifies a non-2xx response.
func (s *Scribe) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error string `json:"error"`
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}

	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error != "" {
			message = errResp.Error
		} else if errResp.Detail.Message != "" {
			message = errResp.Detail.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerScribe,
	}
}

var _ Transcriber = (*Scribe)(nil)
