// Package engineerr implements the engine's error taxonomy: a closed set
// of Kinds plus a typed wrapper, so every layer can switch on what class of
// failure it is handling without string matching.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. It is not a set of distinct error values —
// it is the dimension the dispatcher and state machine make decisions on.
type Kind string

const (
	KindConfig           Kind = "config"
	KindDevice           Kind = "device"
	KindNetworkTransient Kind = "network_transient"
	KindNetworkFatal     Kind = "network_fatal"
	KindAuth             Kind = "auth"
	KindRateLimited      Kind = "rate_limited"
	KindCancelled        Kind = "cancelled"
	KindInternal         Kind = "internal"
)

// Error wraps a cause with the Kind that governs how callers react to it:
// fallback-chain yield, short-circuit, or silent drop.
type Error struct {
	Kind  Kind
	Cause error
	// RetryAfterS is populated for RateLimited errors when the provider
	// reports one; recorded but never obeyed within a session.
	RetryAfterS int
}

func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is (or wraps) an *Error of the same Kind, so
// errors.Is(err, engineerr.New(engineerr.KindAuth, nil)) matches any Auth
// error regardless of cause. The common case is KindOf(err) ==
// engineerr.KindAuth, which does not depend on sentinel identity.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to KindInternal for any
// error that wasn't produced by this package — a failure surfaced from
// somewhere that didn't classify itself is still "internal".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsFallbackEligible reports whether the dispatcher should try the next
// provider in the chain rather than surfacing err.
func IsFallbackEligible(err error) bool {
	switch KindOf(err) {
	case KindNetworkTransient, KindRateLimited:
		return true
	default:
		return false
	}
}

// ErrCancelled marks a user cancel — a non-error outcome: results are
// dropped and no error event is emitted.
var ErrCancelled = New(KindCancelled, errors.New("cancelled by user"))

// ErrEmptyTranscript signals the dispatcher that STT returned no text. It is
// a plain sentinel, not a *Error of some Kind, because an empty transcript
// is not a failure: the session ends quietly with no post-processing, no
// injection, and no error event.
var ErrEmptyTranscript = errors.New("transcript is empty")
