package delivery

import (
	"context"
	"errors"
	"testing"
)

type mockClipboard struct {
	text string
	err  error
}

func (m *mockClipboard) SetText(ctx context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

type fixedDetector struct{ session SessionType }

func (f fixedDetector) SessionType() SessionType { return f.session }

type mockPaste struct {
	calls int
	chord string
	err   error
}

func (m *mockPaste) Paste(ctx context.Context, chord string) error {
	m.calls++
	m.chord = chord
	return m.err
}

func TestDeliver_PopulatesClipboardAndPastesOnWayland(t *testing.T) {
	clip := &mockClipboard{}
	portal := &mockPaste{}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionWayland}, Portal: portal}

	res, err := d.Deliver(context.Background(), "hello world", SurfaceDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.text != "hello world" {
		t.Errorf("expected clipboard populated, got %q", clip.text)
	}
	if !res.Pasted {
		t.Error("expected Pasted=true")
	}
	if portal.calls != 1 {
		t.Errorf("expected exactly one paste attempt, got %d", portal.calls)
	}
	if portal.chord != DefaultPasteChord {
		t.Errorf("expected default chord, got %q", portal.chord)
	}
}

func TestDeliver_UsesTerminalChordForTerminalSurface(t *testing.T) {
	clip := &mockClipboard{}
	portal := &mockPaste{}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionWayland}, Portal: portal}

	_, err := d.Deliver(context.Background(), "ls -la", SurfaceTerminal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if portal.chord != DefaultTerminalPasteChord {
		t.Errorf("expected terminal chord, got %q", portal.chord)
	}
}

func TestDeliver_NoExecutorFallsBackToClipboardOnly(t *testing.T) {
	clip := &mockClipboard{}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionWayland}}

	res, err := d.Deliver(context.Background(), "text", SurfaceDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pasted {
		t.Error("expected Pasted=false with no executor wired")
	}
	if res.Reason != ReasonNoPasteTool {
		t.Errorf("expected ReasonNoPasteTool, got %q", res.Reason)
	}
	if clip.text != "text" {
		t.Error("expected clipboard still populated")
	}
}

func TestDeliver_PasteFailureFallsBackWithoutRetry(t *testing.T) {
	clip := &mockClipboard{}
	portal := &mockPaste{err: errors.New("compositor refused input injection")}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionWayland}, Portal: portal}

	res, err := d.Deliver(context.Background(), "text", SurfaceDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pasted || res.Reason != ReasonSurfaceRefused {
		t.Errorf("expected clipboard-only surface_refused result, got %+v", res)
	}
	if portal.calls != 1 {
		t.Errorf("expected exactly one attempt even on failure, got %d", portal.calls)
	}
}

func TestDeliver_UnknownSessionReportsUnknownSessionReason(t *testing.T) {
	clip := &mockClipboard{}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionUnknown}}

	res, _ := d.Deliver(context.Background(), "text", SurfaceDefault)
	if res.Reason != ReasonUnknownSession {
		t.Errorf("expected ReasonUnknownSession, got %q", res.Reason)
	}
}

func TestDeliver_ClipboardFailureAbortsBeforePaste(t *testing.T) {
	clip := &mockClipboard{err: errors.New("clipboard unavailable")}
	portal := &mockPaste{}
	d := &TextDelivery{Clipboard: clip, Detector: fixedDetector{SessionWayland}, Portal: portal}

	_, err := d.Deliver(context.Background(), "text", SurfaceDefault)
	if err == nil {
		t.Fatal("expected an error when the clipboard write fails")
	}
	if portal.calls != 0 {
		t.Error("expected no paste attempt when the clipboard write failed")
	}
}

func TestChordFor_DefaultsWhenTerminalChordUnset(t *testing.T) {
	if got := ChordFor(SurfaceTerminal, ""); got != DefaultTerminalPasteChord {
		t.Errorf("expected default terminal chord, got %q", got)
	}
	if got := ChordFor(SurfaceTerminal, "ctrl+shift+v"); got != "ctrl+shift+v" {
		t.Errorf("expected override chord, got %q", got)
	}
}
