// Package vad implements voice-activity detection: a speech/non-speech
// classifier per chunk, wrapped in a hysteresis state machine that
// debounces the verdict into Speaking/Silent transitions and fires a
// silence timeout when the user has stopped talking for long enough.
package vad

import (
	"time"

	"github.com/keyscribe/dictation-engine/pkg/audio"
)

// EventType names the events the detector reports.
type EventType string

const (
	EventSpeechOnset     EventType = "speech-onset"
	EventSpeechContinued EventType = "speech-continued"
	EventSilenceStart    EventType = "silence-start"
	EventSilenceTimeout  EventType = "silence-timeout"
)

// Event is delivered synchronously on the chunk-emission thread; handlers
// must not block.
type Event struct {
	Type      EventType
	Timestamp time.Time
}

// Policy classifies a single chunk as speech or not, returning a confidence
// in [0,1] when the underlying model produces one (energy policies report a
// degenerate 0/1 confidence).
type Policy interface {
	// Classify returns true if the chunk is speech.
	Classify(chunk audio.Chunk) (isSpeech bool, confidence float64)
	// SetThreshold updates the policy's decision threshold at runtime.
	SetThreshold(threshold float64)
	// Reset clears any internal state (buffers, RNN hidden state). Must be
	// idempotent.
	Reset()
	Name() string
}

// Detector wraps a Policy with hysteresis: Speaking <-> Silent with >=3
// consecutive non-speech chunks to enter Silent, >=1 speech chunk to enter
// Speaking, and a silence-duration timer gating silence-timeout.
type Detector struct {
	policy         Policy
	silenceTimeout time.Duration // 0 disables silence-timeout

	speaking          bool
	consecutiveNon    int
	minConsecutiveNon int
	silenceStartedAt  time.Time
	timeoutFired      bool
}

// NewDetector builds a Detector. silenceTimeout of 0 disables the
// silence-timeout path entirely.
func NewDetector(policy Policy, silenceTimeout time.Duration) *Detector {
	return &Detector{
		policy:            policy,
		silenceTimeout:    silenceTimeout,
		minConsecutiveNon: 3,
	}
}

// SetThreshold forwards to the underlying policy.
func (d *Detector) SetThreshold(threshold float64) { d.policy.SetThreshold(threshold) }

// SetSilenceTimeout updates the timeout at runtime. 0 disables it.
func (d *Detector) SetSilenceTimeout(timeout time.Duration) { d.silenceTimeout = timeout }

// Speaking reports the detector's current verdict.
func (d *Detector) Speaking() bool { return d.speaking }

// Process classifies one chunk and returns the event it produced, if any.
// Every speech chunk produces an event (speech-onset, or speech-continued
// while already Speaking). A return of nil means a non-speech chunk caused
// no transition (fewer than three in a row while Speaking, or Silent and
// short of the silence-timeout).
func (d *Detector) Process(chunk audio.Chunk, now time.Time) *Event {
	isSpeech, _ := d.policy.Classify(chunk)

	if isSpeech {
		d.consecutiveNon = 0
		d.timeoutFired = false
		if !d.speaking {
			d.speaking = true
			d.silenceStartedAt = time.Time{}
			return &Event{Type: EventSpeechOnset, Timestamp: now}
		}
		d.silenceStartedAt = time.Time{}
		return &Event{Type: EventSpeechContinued, Timestamp: now}
	}

	d.consecutiveNon++
	if d.speaking {
		if d.consecutiveNon >= d.minConsecutiveNon {
			d.speaking = false
			d.silenceStartedAt = now
			return &Event{Type: EventSilenceStart, Timestamp: now}
		}
		return nil
	}

	// Already Silent: track duration for the timeout, regardless of
	// whether silenceStartedAt was set by the transition above or by a
	// prior call (e.g. Silent from session start).
	if d.silenceStartedAt.IsZero() {
		d.silenceStartedAt = now
	}
	if !d.timeoutFired && d.silenceTimeout > 0 && now.Sub(d.silenceStartedAt) >= d.silenceTimeout {
		d.timeoutFired = true
		return &Event{Type: EventSilenceTimeout, Timestamp: now}
	}
	return nil
}

// Reset returns the detector to its initial state. Idempotent.
func (d *Detector) Reset() {
	d.speaking = false
	d.consecutiveNon = 0
	d.silenceStartedAt = time.Time{}
	d.timeoutFired = false
	d.policy.Reset()
}
