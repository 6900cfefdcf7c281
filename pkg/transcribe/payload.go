package transcribe

import (
	"encoding/base64"
	"fmt"
)

// DefaultMaxAudioBytes is the payload ceiling enforced before
// transmission, and again server-side as defense in depth.
const DefaultMaxAudioBytes = 2 << 20 // 2 MiB

// CheckSize rejects payloads above the ceiling.
func CheckSize(n, max int) error {
	if max <= 0 {
		max = DefaultMaxAudioBytes
	}
	if n > max {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, n, max)
	}
	return nil
}

// DecodeBase64Audio decodes a base64 audio payload, estimating the
// decoded size as len*3/4 up front so oversized payloads are rejected
// before any decode work, then re-validating the actual length.
func DecodeBase64Audio(encoded string, max int) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxAudioBytes
	}
	if est := len(encoded) * 3 / 4; est > max {
		return nil, fmt.Errorf("%w: ~%d bytes (limit %d)", ErrPayloadTooLarge, est, max)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 audio: %w", err)
	}
	if err := CheckSize(len(data), max); err != nil {
		return nil, err
	}
	return data, nil
}
