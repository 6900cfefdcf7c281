// Package playback plays synthesized speech on the local audio device.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pulsekit/vitalvoice/pkg/tts"
)

// Player sends synthesized audio to an output device.
type Player interface {
	// Play blocks until the clip finishes or ctx is cancelled.
	Play(ctx context.Context, audio []byte, format tts.AudioFormat) error

	// Close releases the output device.
	Close() error
}

// SpeakerPlayer plays PCM16 audio through the system speaker.
type SpeakerPlayer struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

// NewSpeakerPlayer creates a speaker-backed player.
func NewSpeakerPlayer() *SpeakerPlayer {
	return &SpeakerPlayer{}
}

// Play streams the PCM16 clip to the speaker.
func (p *SpeakerPlayer) Play(ctx context.Context, audio []byte, format tts.AudioFormat) error {
	if format.BitDepth != 16 {
		return fmt.Errorf("playback: unsupported bit depth %d", format.BitDepth)
	}

	sr := beep.SampleRate(format.SampleRate)
	if err := p.ensureSpeaker(sr); err != nil {
		return err
	}

	done := make(chan struct{})
	streamer := &pcmStreamer{data: audio, channels: format.Channels}
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Close releases the speaker.
func (p *SpeakerPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	return nil
}

func (p *SpeakerPlayer) ensureSpeaker(sr beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized && p.sampleRate == sr {
		return nil
	}
	if p.initialized {
		speaker.Close()
	}
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("playback: init speaker: %w", err)
	}
	p.initialized = true
	p.sampleRate = sr
	return nil
}

// pcmStreamer adapts little-endian PCM16 bytes to a beep.Streamer.
type pcmStreamer struct {
	data     []byte
	channels int
	pos      int
}

func (s *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}

	frameBytes := 2 * s.channels
	if frameBytes == 0 {
		frameBytes = 2
	}

	n := 0
	for ; n < len(samples) && s.pos+frameBytes <= len(s.data); n++ {
		left := s.sampleAt(s.pos)
		right := left
		if s.channels >= 2 {
			right = s.sampleAt(s.pos + 2)
		}
		samples[n][0] = left
		samples[n][1] = right
		s.pos += frameBytes
	}
	return n, n > 0
}

func (s *pcmStreamer) sampleAt(off int) float64 {
	v := int16(s.data[off]) | int16(s.data[off+1])<<8
	return float64(v) / 32768
}

func (s *pcmStreamer) Err() error {
	return nil
}

var _ Player = (*SpeakerPlayer)(nil)
