package engine

import (
	"errors"

	"github.com/keyscribe/dictation-engine/pkg/audio"
)

// DefaultMaxBufferMs bounds SessionBuffer growth at ten minutes of audio,
// independent of the configured silence timeout (which bounds idle time,
// not total recorded duration).
const DefaultMaxBufferMs = 10 * 60 * 1000

// SessionBuffer is the lossless, ordered record of one utterance's
// captured audio. Unlike the VAD path (which the coordinator may drop
// chunks from under load), the SessionBuffer must never lose a chunk while
// the session is Listening — it is the source of the audio artifact STT
// eventually transcribes.
type SessionBuffer struct {
	format   audio.Format
	chunks   []audio.Chunk
	bytes    int
	maxBytes int
	sealed   bool
}

// ErrBufferCeilingExceeded is returned when Append would grow the buffer
// past its configured byte ceiling; the caller (the Engine) aborts the
// session with a Device-class error.
var ErrBufferCeilingExceeded = errors.New("session buffer exceeded its byte ceiling")

// NewSessionBuffer creates an empty buffer bounded at maxMs of audio in
// format. maxMs <= 0 uses DefaultMaxBufferMs.
func NewSessionBuffer(format audio.Format, maxMs int) *SessionBuffer {
	if maxMs <= 0 {
		maxMs = DefaultMaxBufferMs
	}
	return &SessionBuffer{format: format, maxBytes: format.ChunkBytes(maxMs)}
}

// Append records one chunk. Once the buffer is sealed it is a no-op that
// returns nil (not a panic), since a stray chunk arriving after Stopping
// should never corrupt the artifact already handed to STT.
func (b *SessionBuffer) Append(c audio.Chunk) error {
	if b.sealed {
		return nil
	}
	if b.bytes+len(c.Samples) > b.maxBytes {
		return ErrBufferCeilingExceeded
	}
	b.chunks = append(b.chunks, c)
	b.bytes += len(c.Samples)
	return nil
}

// Seal freezes the buffer into a read-only artifact on the
// Stopping->Processing transition. Sealing is idempotent.
func (b *SessionBuffer) Seal() {
	b.sealed = true
}

// Sealed reports whether Seal has been called.
func (b *SessionBuffer) Sealed() bool { return b.sealed }

// Bytes returns the concatenated PCM payload of every appended chunk, in
// arrival order.
func (b *SessionBuffer) Bytes() []byte {
	out := make([]byte, 0, b.bytes)
	for _, c := range b.chunks {
		out = append(out, c.Samples...)
	}
	return out
}

// DurationS derives the recorded duration from the byte count and format.
func (b *SessionBuffer) DurationS() float64 {
	bytesPerSample := b.format.BitsPerSample / 8
	if bytesPerSample == 0 || b.format.Channels == 0 || b.format.SampleRate == 0 {
		return 0
	}
	samples := b.bytes / (bytesPerSample * b.format.Channels)
	return float64(samples) / float64(b.format.SampleRate)
}

// Len returns the number of appended chunks.
func (b *SessionBuffer) Len() int { return len(b.chunks) }
