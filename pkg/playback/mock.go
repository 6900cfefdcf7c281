package playback

import (
	"context"
	"sync"

	"github.com/pulsekit/vitalvoice/pkg/tts"
)

// MockPlayer is a Player for tests. It discards audio but records
// each play for verification.
type MockPlayer struct {
	// PlayErr, when set, is returned by every Play call.
	PlayErr error

	mu    sync.Mutex
	plays []int // byte lengths of played clips
}

// Play records the clip length.
func (m *MockPlayer) Play(ctx context.Context, audio []byte, format tts.AudioFormat) error {
	if m.PlayErr != nil {
		return m.PlayErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, len(audio))
	return nil
}

// Close is a no-op.
func (m *MockPlayer) Close() error {
	return nil
}

// Plays returns the byte lengths of played clips in order.
func (m *MockPlayer) Plays() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.plays))
	copy(out, m.plays)
	return out
}

var _ Player = (*MockPlayer)(nil)
