package stt

import "testing"

func TestTextAccumulator_InterimReplacesNotAppends(t *testing.T) {
	var a TextAccumulator
	a.Apply(TranscriptEvent{Text: "hel", IsFinal: false})
	a.Apply(TranscriptEvent{Text: "hello", IsFinal: false})
	if a.Text() != "hello" {
		t.Errorf("expected interim replacement, got %q", a.Text())
	}
}

func TestTextAccumulator_FinalCommitsAndClearsPending(t *testing.T) {
	var a TextAccumulator
	a.Apply(TranscriptEvent{Text: "hello ", IsFinal: false})
	a.Apply(TranscriptEvent{Text: "hello world", IsFinal: true})
	a.Apply(TranscriptEvent{Text: "next", IsFinal: false})
	if a.Text() != "hello worldnext" {
		t.Errorf("expected committed+pending concatenation, got %q", a.Text())
	}
}

func TestTextAccumulator_FinalizeFoldsPendingWhenSocketClosesWithoutFinal(t *testing.T) {
	var a TextAccumulator
	a.Apply(TranscriptEvent{Text: "done", IsFinal: false})
	result := a.Finalize()
	if result != "done" {
		t.Errorf("expected pending folded into committed on finalize, got %q", result)
	}
	if a.Text() != "done" {
		t.Errorf("expected committed to now equal %q, got %q", "done", a.Text())
	}
}
