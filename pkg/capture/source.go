// Package capture turns a microphone grant into a finite audio buffer.
//
// A Source abstracts the platform capture device (native microphone on
// device, browser capture on web, mock in tests). A Session drives one
// Source, records for a bounded duration or until stopped, and yields
// the collected audio as a single immutable AudioBuffer.
package capture

import (
	"context"
	"io"
)

// Chunk is one buffer's worth of captured audio.
type Chunk struct {
	// Samples contains PCM16 audio samples (little-endian).
	Samples []int16

	// SampleRate is the sample rate of this chunk.
	SampleRate int

	// Channels is the number of channels in this chunk.
	Channels int
}

// Bytes returns the raw little-endian bytes of the chunk.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// Duration returns the playback duration of this chunk in seconds.
func (c *Chunk) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// Source captures audio from a microphone or other input device.
type Source interface {
	// Start begins audio capture. It performs the permission request
	// and device acquisition, returning ErrPermissionDenied,
	// ErrDeviceUnavailable or ErrCaptureUnsupported on failure.
	Start(ctx context.Context) error

	// Stop halts audio capture and releases the device.
	// It is safe to call Stop multiple times.
	Stop() error

	// Stream returns a channel that receives audio chunks.
	// The channel is closed when the source is stopped.
	Stream() <-chan Chunk

	// Config returns the current audio configuration.
	Config() Config

	// Name returns the backend name (e.g., "device", "browser", "mock").
	Name() string

	// Close releases all resources. After Close, the source cannot
	// be restarted.
	io.Closer
}
