package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm, DefaultFormat)

	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Error("expected RIFF prefix")
	}
	if !bytes.Contains(wav, []byte("WAVE")) {
		t.Error("expected WAVE format identifier")
	}
	if len(wav) != 44+len(pcm) {
		t.Errorf("expected length %d, got %d", 44+len(pcm), len(wav))
	}
	if !bytes.HasSuffix(wav, pcm) {
		t.Error("expected PCM payload at the end of the container")
	}
}

func TestEncodeWAV_HeaderFieldsFollowFormat(t *testing.T) {
	format := Format{SampleRate: 44100, Channels: 2, BitsPerSample: 16}
	wav := EncodeWAV(make([]byte, 8), format)

	channels := binary.LittleEndian.Uint16(wav[22:24])
	if channels != 2 {
		t.Errorf("channels field = %d, want 2", channels)
	}
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 44100 {
		t.Errorf("sample rate field = %d, want 44100", sampleRate)
	}
	byteRate := binary.LittleEndian.Uint32(wav[28:32])
	if byteRate != 44100*2*2 {
		t.Errorf("byte rate field = %d, want %d", byteRate, 44100*2*2)
	}
}
