package capture

import "fmt"

// AudioBuffer is the finished product of one recording: encoded audio
// bytes plus a MIME tag. It is owned by the capture session until
// handed to a transcription client and is never mutated afterwards.
type AudioBuffer struct {
	data     []byte
	mimeType string
}

// NewAudioBuffer wraps encoded audio bytes. A zero-length payload is a
// capture failure, not a valid buffer.
func NewAudioBuffer(data []byte, mimeType string) (*AudioBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyCapture
	}
	return &AudioBuffer{data: data, mimeType: mimeType}, nil
}

// Bytes returns the encoded audio. Callers must not modify the
// returned slice.
func (b *AudioBuffer) Bytes() []byte {
	return b.data
}

// MIMEType returns the codec tag (e.g., "audio/wav").
func (b *AudioBuffer) MIMEType() string {
	return b.mimeType
}

// Len returns the byte length of the buffer.
func (b *AudioBuffer) Len() int {
	return len(b.data)
}

// String implements fmt.Stringer without dumping audio bytes.
func (b *AudioBuffer) String() string {
	return fmt.Sprintf("AudioBuffer(%s, %d bytes)", b.mimeType, len(b.data))
}
