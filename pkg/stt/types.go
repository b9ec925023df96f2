// Package stt implements speech-to-text dispatch: a closed set of provider
// kinds behind capability interfaces, tried in declared order with
// confidence-gated escalation from local to cloud.
package stt

import (
	"context"
	"time"
)

// Request carries one sealed utterance to a provider.
type Request struct {
	AudioRef  []byte // sealed PCM/WAV artifact
	Language  string // empty means auto-detect
	ModelID   string
	DurationS float64
}

// Result is one provider's transcription of a Request.
type Result struct {
	Text         string
	Confidence   float64 // 0 means absent; Dispatcher treats absent as 1.0 per GLOSSARY
	Language     string
	DurationS    float64
	LatencyMs    int64
	ProviderTag  string
	UsedFallback bool
}

// BatchProvider transcribes a sealed audio artifact in one call.
type BatchProvider interface {
	TranscribeBatch(ctx context.Context, req Request) (Result, error)
	Name() string
}

// TranscriptEvent is one transcript message from a streaming provider.
type TranscriptEvent struct {
	Text       string
	IsFinal    bool
	Confidence float64
	Language   string
}

// StreamSession is the lazy sequence of server messages a
// StreamingProvider hands back, plus the means to feed it audio.
type StreamSession interface {
	// SendAudio writes one base64-destined chunk of raw PCM.
	SendAudio(ctx context.Context, pcm []byte) error
	// End sends the terminating `end` message.
	End(ctx context.Context) error
	// Events returns a channel of transcript events. Closed when the server
	// connection ends (normal close or error); a server error is reported
	// by Err, not on this channel.
	Events() <-chan TranscriptEvent
	// Err returns the terminal error, if the session ended abnormally.
	Err() error
	// Close aborts the connection immediately (used on session cancel).
	Close() error
}

// StreamingProvider opens a persistent bidirectional socket and
// transcribes audio as it arrives.
type StreamingProvider interface {
	OpenStream(ctx context.Context, modelID, language string) (StreamSession, error)
	Name() string
}

// TextAccumulator folds a stream of interim and final transcripts into one
// string: committed is the concatenation of all final segments seen so
// far; pending is the latest interim segment (replaced wholesale on each
// new interim, not appended). Text() is always committed+pending.
type TextAccumulator struct {
	committed string
	pending   string
}

// Apply folds one TranscriptEvent into the accumulator.
func (a *TextAccumulator) Apply(ev TranscriptEvent) {
	if ev.IsFinal {
		a.committed += ev.Text
		a.pending = ""
		return
	}
	a.pending = ev.Text
}

// Text returns the current best-effort transcript.
func (a *TextAccumulator) Text() string { return a.committed + a.pending }

// Finalize folds any outstanding interim text into committed, used when a
// streaming session's socket closes normally without a last final message:
// the last interim text becomes final.
func (a *TextAccumulator) Finalize() string {
	if a.pending != "" {
		a.committed += a.pending
		a.pending = ""
	}
	return a.committed
}

// ConfigAckGraceMs is the grace period the client waits for a streaming
// provider's ack (an `info` message) before sending audio unprompted:
// prefer the explicit ack when the provider supports it, else proceed
// after this much time.
const ConfigAckGraceMs = 200 * time.Millisecond
