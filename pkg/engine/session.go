package engine

import (
	"github.com/google/uuid"

	"github.com/keyscribe/dictation-engine/pkg/audio"
	"github.com/keyscribe/dictation-engine/pkg/metrics"
)

// Surface classifies the focused delivery target. Engine is the one place
// that knows how to translate it into the narrower enum each downstream
// package (stt, postprocess, delivery) keeps for its own concern.
type Surface int

const (
	SurfaceDefault Surface = iota
	SurfaceTerminal
	SurfaceEditor
	SurfaceBrowser
)

// Session is one user-initiated dictation from start to delivery. Exactly
// one may be active at a time, enforced by the Engine only ever holding a
// single *Session and the StateMachine gating every transition that would
// create or discard one.
type Session struct {
	ID              string
	Buffer          *SessionBuffer
	Tracker         *metrics.Tracker
	IsTerminalPaste bool
	Surface         Surface
	RawText         string
	FinalText       string
	UsedFallback    bool
	Provider        string
}

// newSession allocates a Session with a fresh uuid.
func newSession(format audio.Format, maxBufferMs int, thresholds metrics.Thresholds, sink metrics.AlertSink, reg *metrics.Registry, terminal bool) *Session {
	id := uuid.NewString()
	surface := SurfaceDefault
	if terminal {
		surface = SurfaceTerminal
	}
	return &Session{
		ID:              id,
		Buffer:          NewSessionBuffer(format, maxBufferMs),
		Tracker:         metrics.NewTracker(id, thresholds, sink, reg),
		IsTerminalPaste: terminal,
		Surface:         surface,
	}
}
