package audio

import "testing"

func TestApplyGain_UnityIsNoOp(t *testing.T) {
	in := []byte{0x10, 0x20, 0x30, 0x40}
	out := applyGain(in, 1)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("byte %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestApplyGain_ClampsOnOverflow(t *testing.T) {
	// int16 max sample, little-endian.
	in := []byte{0xFF, 0x7F}
	out := applyGain(in, 2)
	got := int16(out[0]) | int16(out[1])<<8
	if got != 32767 {
		t.Errorf("expected clamp to 32767, got %d", got)
	}
}

func TestApplyGain_Mute(t *testing.T) {
	in := []byte{0xFF, 0x7F, 0x00, 0x80}
	out := applyGain(in, 0)
	for i, b := range out {
		if b != 0 {
			t.Errorf("byte %d: expected 0 with zero gain, got %v", i, b)
		}
	}
}

func TestNewSource_DefaultsFormatAndGain(t *testing.T) {
	s := NewSource(SourceConfig{})
	if s.cfg.Format != DefaultFormat {
		t.Errorf("expected DefaultFormat, got %+v", s.cfg.Format)
	}
	if s.cfg.Gain != 1 {
		t.Errorf("expected default gain 1, got %v", s.cfg.Gain)
	}
}

func TestSource_StopWithoutStartIsNoOp(t *testing.T) {
	s := NewSource(SourceConfig{})
	if err := s.Stop(); err != nil {
		t.Errorf("expected Stop on a never-started source to be a no-op, got %v", err)
	}
}
