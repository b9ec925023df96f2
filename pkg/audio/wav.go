package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps raw PCM in a minimal RIFF/WAVE container so batch STT
// providers can upload the sealed session artifact as a regular WAV file.
// The header is derived from format; no resampling or conversion happens
// here.
func EncodeWAV(pcm []byte, format Format) []byte {
	bytesPerSample := format.BitsPerSample / 8
	blockAlign := format.Channels * bytesPerSample
	byteRate := format.SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // PCM fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // audio format: PCM
	binary.Write(buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(format.BitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
