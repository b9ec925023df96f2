package audio

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func testFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

func TestChunker_EmitsFixedSizeChunksInOrder(t *testing.T) {
	c := NewChunker(testFormat(), 100) // 3200 bytes/chunk
	data := make([]byte, 3200*3)
	for i := range data {
		data[i] = byte(i)
	}
	chunks := c.Append(data)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Samples) != 3200 {
			t.Errorf("chunk %d: expected 3200 bytes, got %d", i, len(ch.Samples))
		}
		if ch.Seq != uint64(i) {
			t.Errorf("chunk %d: expected seq %d, got %d", i, i, ch.Seq)
		}
		if ch.IsFinal {
			t.Errorf("chunk %d: non-final chunk marked final", i)
		}
	}
}

func TestChunker_CarriesPartialRemainderAcrossAppends(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	first := c.Append(make([]byte, 2000))
	if len(first) != 0 {
		t.Fatalf("expected no chunks yet, got %d", len(first))
	}
	if c.PendingBytes() != 2000 {
		t.Fatalf("expected 2000 pending bytes, got %d", c.PendingBytes())
	}
	second := c.Append(make([]byte, 2000))
	if len(second) != 1 {
		t.Fatalf("expected 1 chunk after crossing the boundary, got %d", len(second))
	}
	if c.PendingBytes() != 800 {
		t.Fatalf("expected 800 pending bytes remaining, got %d", c.PendingBytes())
	}
}

func TestChunker_ByteAccountingInvariant(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	var appended int64
	for _, n := range []int{1000, 5000, 123, 9999} {
		appended += int64(n)
		c.Append(make([]byte, n))
	}
	emitted := c.ChunksEmitted() * int64(c.chunkBytes)
	if emitted+c.PendingBytes() != appended {
		t.Errorf("invariant violated: emitted(%d)+pending(%d) != appended(%d)", emitted, c.PendingBytes(), appended)
	}
}

func TestChunker_FlushEmitsShortFinalChunk(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	c.Append(make([]byte, 1500))
	final := c.Flush()
	if final == nil {
		t.Fatal("expected a final chunk")
	}
	if !final.IsFinal {
		t.Error("expected IsFinal to be true")
	}
	if len(final.Samples) != 1500 {
		t.Errorf("expected short final chunk of 1500 bytes, got %d", len(final.Samples))
	}
}

func TestChunker_FlushIsIdempotent(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	c.Append(make([]byte, 1500))
	first := c.Flush()
	second := c.Flush()
	if first == nil {
		t.Fatal("expected a final chunk on first flush")
	}
	if second != nil {
		t.Error("expected nil on second flush call")
	}
	if c.Append(make([]byte, 100)) != nil {
		t.Error("append after flush should be a no-op")
	}
}

func TestChunker_FlushWithNoPendingBytesEmitsEmptyFinalChunk(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	c.Append(make([]byte, 3200))
	final := c.Flush()
	if final == nil || !final.IsFinal || len(final.Samples) != 0 {
		t.Errorf("expected an empty IsFinal chunk when append landed exactly on a chunk boundary, got %+v", final)
	}
}

func TestChunk_Base64RoundTrips(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	c.Append(make([]byte, 100))
	final := c.Flush()
	if final == nil {
		t.Fatal("expected a final chunk")
	}
	decoded, err := base64.StdEncoding.DecodeString(final.Base64())
	if err != nil {
		t.Fatalf("decoding Base64(): %v", err)
	}
	if !bytes.Equal(decoded, final.Samples) {
		t.Error("Base64() did not round-trip the chunk samples")
	}
}

func TestChunker_DurationSReflectsFormat(t *testing.T) {
	c := NewChunker(testFormat(), 100)
	c.Append(make([]byte, 32000)) // 1 second at 16kHz mono 16-bit
	if d := c.DurationS(); d < 0.99 || d > 1.01 {
		t.Errorf("expected ~1.0s duration, got %v", d)
	}
}
