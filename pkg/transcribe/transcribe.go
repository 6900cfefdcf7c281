// Package transcribe converts captured audio into text, masking
// provider differences behind a single Transcriber interface.
//
// The primary path submits audio to a remote ASR service. When the
// remote call fails for a transient reason, a Chain transparently
// retries through a one-shot platform Recognizer before surfacing an
// error, so callers see a single error vocabulary regardless of which
// path served the request.
package transcribe

import (
	"context"
	"strings"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

// Segment is one timestamped span of a transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the normalized output of one transcription attempt.
// Produced once per successful attempt and never mutated.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Empty reports whether the transcript contains no speech after
// trimming. Callers must treat an empty transcript as
// ErrNoSpeechDetected, a distinct condition from a transport failure.
func (r *Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Options selects the transcription language and model.
type Options struct {
	Language string
	Model    string
}

// Transcriber converts an audio buffer into a Result.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error)
}

// rawResult is the loosely-shaped provider response. Providers may
// omit any field; normalize fills the gaps.
type rawResult struct {
	Text     *string    `json:"text"`
	Language *string    `json:"language"`
	Duration *float64   `json:"duration"`
	Segments []*Segment `json:"segments"`
}

// normalize produces a well-typed Result even from partially-shaped
// provider JSON: missing text becomes "", missing segments an empty
// sequence, missing duration 0.
func normalize(raw *rawResult) *Result {
	res := &Result{
		Segments: []Segment{},
	}
	if raw == nil {
		return res
	}
	if raw.Text != nil {
		res.Text = *raw.Text
	}
	if raw.Language != nil {
		res.Language = *raw.Language
	}
	if raw.Duration != nil {
		res.Duration = *raw.Duration
	}
	for _, s := range raw.Segments {
		if s != nil {
			res.Segments = append(res.Segments, *s)
		}
	}
	return res
}
