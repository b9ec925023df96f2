package vad

import (
	"sync"

	"github.com/keyscribe/dictation-engine/pkg/audio"
)

// EnergyPolicy is the cheap RMS-threshold verdict: a chunk is silence when
// its level falls below the configured dB threshold. It consumes the
// already-computed audio.Chunk.RMSdB rather than recomputing RMS from raw
// bytes, since the Chunker derives it per chunk anyway.
type EnergyPolicy struct {
	mu          sync.Mutex
	thresholdDB float64
	lastRMSdB   float32
}

// NewEnergyPolicy builds an EnergyPolicy with the given threshold in dB
// (audio.silence_threshold_db, -40 by default).
func NewEnergyPolicy(thresholdDB float64) *EnergyPolicy {
	return &EnergyPolicy{thresholdDB: thresholdDB}
}

func (p *EnergyPolicy) Classify(chunk audio.Chunk) (bool, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRMSdB = chunk.RMSdB
	isSpeech := float64(chunk.RMSdB) >= p.thresholdDB
	// Confidence has no natural meaning for a threshold policy; report the
	// degenerate extremes so confidence-based callers still get a number.
	if isSpeech {
		return true, 1.0
	}
	return false, 0.0
}

func (p *EnergyPolicy) SetThreshold(thresholdDB float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.thresholdDB = thresholdDB
}

func (p *EnergyPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRMSdB = 0
}

func (p *EnergyPolicy) Name() string { return "energy" }

// LastRMSdB returns the dB level of the last classified chunk, useful for
// UI level meters.
func (p *EnergyPolicy) LastRMSdB() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRMSdB
}
