package audio

import "time"

// Chunker re-blocks arbitrary-sized PCM slices into fixed-size Chunks.
// Pending bytes from a partial append carry over to the next Append call,
// and Flush seals whatever remains into a single final chunk.
type Chunker struct {
	format        Format
	chunkBytes    int
	pending       []byte
	seq           uint64
	totalBytes    int64
	chunksEmitted int64
	flushed       bool
	startedAt     time.Time
}

// NewChunker builds a Chunker for the given format and chunk duration.
func NewChunker(format Format, chunkMs int) *Chunker {
	return &Chunker{
		format:     format,
		chunkBytes: format.ChunkBytes(chunkMs),
		startedAt:  time.Now(),
	}
}

// Append feeds newly captured PCM bytes in and returns every full chunk that
// can now be emitted, in input order. Bytes that don't fill a whole chunk
// remain in pending for the next call.
//
// Invariant: total_bytes_emitted + pending_bytes == total_bytes_appended.
func (c *Chunker) Append(data []byte) []Chunk {
	if c.flushed || len(data) == 0 {
		return nil
	}
	c.totalBytes += int64(len(data))
	c.pending = append(c.pending, data...)

	var out []Chunk
	for len(c.pending) >= c.chunkBytes {
		samples := make([]byte, c.chunkBytes)
		copy(samples, c.pending[:c.chunkBytes])
		c.pending = c.pending[c.chunkBytes:]
		out = append(out, Chunk{
			Samples: samples,
			Seq:     c.seq,
			RMSdB:   RMSdB(samples),
		})
		c.seq++
		c.chunksEmitted++
	}
	return out
}

// Flush emits whatever remains as a single IsFinal chunk, even if short of
// chunkBytes (empty when nothing is pending), and marks the Chunker as done.
// Calling Flush more than once is a no-op returning nil — IsFinal appears
// exactly once per session.
func (c *Chunker) Flush() *Chunk {
	if c.flushed {
		return nil
	}
	c.flushed = true
	samples := c.pending
	c.pending = nil
	ch := Chunk{
		Samples: samples,
		Seq:     c.seq,
		IsFinal: true,
		RMSdB:   RMSdB(samples),
	}
	c.seq++
	c.chunksEmitted++
	return &ch
}

// TotalBytes returns the number of bytes ever appended.
func (c *Chunker) TotalBytes() int64 { return c.totalBytes }

// ChunksEmitted returns the number of chunks emitted so far (including the
// final chunk, if any).
func (c *Chunker) ChunksEmitted() int64 { return c.chunksEmitted }

// PendingBytes returns the number of bytes buffered but not yet emitted.
func (c *Chunker) PendingBytes() int64 { return int64(len(c.pending)) }

// ElapsedS returns the wall-clock time since the Chunker was created.
func (c *Chunker) ElapsedS() float64 { return time.Since(c.startedAt).Seconds() }

// DurationS returns the audio duration represented by all emitted and
// pending bytes, derived from the configured format.
func (c *Chunker) DurationS() float64 {
	bytesPerSecond := c.format.SampleRate * c.format.Channels * (c.format.BitsPerSample / 8)
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(c.totalBytes) / float64(bytesPerSecond)
}
