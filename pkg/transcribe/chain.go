package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pulsekit/vitalvoice/pkg/capture"
)

// Chain implements Transcriber by trying the remote provider first and
// falling back to a platform Recognizer when the remote call fails for
// a transient reason. Input-validation failures (oversized or empty
// payloads) are never routed to the fallback.
type Chain struct {
	primary  Transcriber
	fallback Recognizer
	logger   *slog.Logger
}

// NewChain creates a transcription chain. fallback may be nil when no
// platform recognition facility exists.
func NewChain(primary Transcriber, fallback Recognizer, opts ...ChainOption) *Chain {
	c := &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default().With("component", "transcribe.chain"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets the structured logger.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger.With("component", "transcribe.chain")
	}
}

// Transcribe tries the primary provider, then the fallback.
func (c *Chain) Transcribe(ctx context.Context, audio *capture.AudioBuffer, opts Options) (*Result, error) {
	result, primaryErr := c.primary.Transcribe(ctx, audio, opts)
	if primaryErr == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !c.canFallBack(primaryErr) {
		return nil, primaryErr
	}

	c.logger.Warn("primary transcription failed, trying platform recognizer",
		"error", primaryErr,
	)

	result, fbErr := c.fallback.Recognize(ctx, audio, opts.Language)
	if fbErr == nil {
		c.logger.Info("fallback recognizer succeeded",
			"chars", len(result.Text),
		)
		return result, nil
	}

	return nil, &ChainError{Errors: []error{primaryErr, fbErr}}
}

// canFallBack reports whether the fallback should be attempted for
// this primary failure.
func (c *Chain) canFallBack(err error) bool {
	if c.fallback == nil || !c.fallback.Available() {
		return false
	}
	// Input-validation errors will fail identically on any path.
	if errors.Is(err, ErrPayloadTooLarge) || errors.Is(err, capture.ErrEmptyCapture) {
		return false
	}
	return true
}

// ChainError aggregates the primary and fallback errors.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "transcribe chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("transcribe chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("transcribe chain: all %d paths failed, last error: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

var _ Transcriber = (*Chain)(nil)
