package engineerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(KindNetworkTransient, cause)

	if got, want := err.Error(), "network_transient: connection reset"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
}

func TestErrorWithNilCause(t *testing.T) {
	err := New(KindCancelled, nil)
	if got, want := err.Error(), "cancelled"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"wrapped auth error", New(KindAuth, errors.New("401")), KindAuth},
		{"fmt-wrapped engineerr", fmt.Errorf("dispatch failed: %w", New(KindDevice, errors.New("lost"))), KindDevice},
		{"plain stdlib error defaults to internal", errors.New("boom"), KindInternal},
		{"empty-transcript sentinel defaults to internal", ErrEmptyTranscript, KindInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := KindOf(c.err); got != c.want {
				t.Fatalf("KindOf() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestIsFallbackEligible(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindNetworkTransient, true},
		{KindRateLimited, true},
		{KindAuth, false},
		{KindNetworkFatal, false},
		{KindInternal, false},
		{KindConfig, false},
		{KindDevice, false},
		{KindCancelled, false},
	}
	for _, c := range cases {
		err := New(c.kind, errors.New("x"))
		if got := IsFallbackEligible(err); got != c.want {
			t.Fatalf("IsFallbackEligible(%v) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestErrorIsComparesKind(t *testing.T) {
	a := New(KindRateLimited, errors.New("429"))
	b := New(KindRateLimited, errors.New("different cause, same kind"))
	c := New(KindAuth, errors.New("401"))

	if !errors.Is(a, b) {
		t.Fatalf("errors.Is(a, b) = false, want true: same Kind should match regardless of cause")
	}
	if errors.Is(a, c) {
		t.Fatalf("errors.Is(a, c) = true, want false: different Kind must not match")
	}
}

func TestErrCancelledIsNonErrorSentinelKind(t *testing.T) {
	if KindOf(ErrCancelled) != KindCancelled {
		t.Fatalf("KindOf(ErrCancelled) = %v, want KindCancelled", KindOf(ErrCancelled))
	}
}
