// Package audio implements the capture front end of the dictation engine:
// Source opens a malgo input device and produces a stream of PCM frames;
// Chunker re-blocks that stream into fixed-duration chunks and tracks a
// rolling byte ledger.
package audio

import (
	"encoding/base64"
	"math"
)

// Format is the engine's single internal audio format: mono 16-bit PCM at
// 16 kHz. All buffers are assumed to already be in this format — resampling
// happens upstream, outside the core.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is the engine-wide capture format.
var DefaultFormat = Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

// ChunkBytes returns the byte length of a chunk of the given duration in
// this format: floor(sample_rate * channels * (bits/8) * chunk_ms / 1000).
func (f Format) ChunkBytes(chunkMs int) int {
	return f.SampleRate * f.Channels * (f.BitsPerSample / 8) * chunkMs / 1000
}

// DefaultChunkMs is the default chunk duration.
const DefaultChunkMs = 100

// Chunk is an immutable fixed-duration PCM block.
type Chunk struct {
	Samples []byte
	Seq     uint64
	IsFinal bool
	RMSdB   float32
}

// Base64 returns the chunk's samples in the encoding the streaming wire
// protocol's audio messages carry.
func (c Chunk) Base64() string {
	return base64.StdEncoding.EncodeToString(c.Samples)
}

// RMSdB computes the RMS level of 16-bit mono PCM samples in decibels
// relative to full scale.
func RMSdB(samples []byte) float32 {
	if len(samples) < 2 {
		return -96 // floor value for silence/empty input
	}
	var sum float64
	n := 0
	for i := 0; i+1 < len(samples); i += 2 {
		s := int16(samples[i]) | int16(samples[i+1])<<8
		f := float64(s) / 32768.0
		sum += f * f
		n++
	}
	if n == 0 {
		return -96
	}
	rms := math.Sqrt(sum / float64(n))
	if rms <= 0 {
		return -96
	}
	db := 20 * math.Log10(rms)
	if db < -96 {
		db = -96
	}
	return float32(db)
}
