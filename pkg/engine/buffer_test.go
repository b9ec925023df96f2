package engine

import (
	"bytes"
	"testing"

	"github.com/keyscribe/dictation-engine/pkg/audio"
)

func TestSessionBuffer_AppendsInOrder(t *testing.T) {
	b := NewSessionBuffer(audio.DefaultFormat, 0)
	b.Append(audio.Chunk{Samples: []byte{1, 2}, Seq: 0})
	b.Append(audio.Chunk{Samples: []byte{3, 4}, Seq: 1})

	if got := b.Bytes(); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Bytes() = %v, want concatenation in arrival order", got)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestSessionBuffer_RejectsAppendPastCeiling(t *testing.T) {
	b := NewSessionBuffer(audio.DefaultFormat, 100) // one chunk of room
	room := audio.DefaultFormat.ChunkBytes(100)

	if err := b.Append(audio.Chunk{Samples: make([]byte, room)}); err != nil {
		t.Fatalf("append within ceiling: %v", err)
	}
	if err := b.Append(audio.Chunk{Samples: []byte{0}}); err != ErrBufferCeilingExceeded {
		t.Fatalf("append past ceiling = %v, want ErrBufferCeilingExceeded", err)
	}
	// The artifact already recorded must be untouched by the rejection.
	if len(b.Bytes()) != room {
		t.Errorf("buffer grew past its ceiling: %d bytes", len(b.Bytes()))
	}
}

func TestSessionBuffer_SealedAppendIsNoOp(t *testing.T) {
	b := NewSessionBuffer(audio.DefaultFormat, 0)
	b.Append(audio.Chunk{Samples: []byte{1, 2}})
	b.Seal()
	b.Seal() // idempotent

	if err := b.Append(audio.Chunk{Samples: []byte{3, 4}}); err != nil {
		t.Fatalf("append after seal returned %v, want nil no-op", err)
	}
	if len(b.Bytes()) != 2 {
		t.Errorf("sealed buffer accepted a chunk: %d bytes", len(b.Bytes()))
	}
	if !b.Sealed() {
		t.Error("Sealed() = false after Seal")
	}
}

func TestSessionBuffer_DurationDerivedFromFormat(t *testing.T) {
	b := NewSessionBuffer(audio.DefaultFormat, 0)
	b.Append(audio.Chunk{Samples: make([]byte, 32000)}) // 1s at 16kHz mono 16-bit
	if d := b.DurationS(); d < 0.99 || d > 1.01 {
		t.Errorf("DurationS() = %v, want ~1.0", d)
	}
}
