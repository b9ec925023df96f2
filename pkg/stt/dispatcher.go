package stt

import (
	"context"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// Surface classifies the focused delivery target, needed here only to
// decide streaming eligibility (a non-streaming surface forces batch).
type Surface string

const (
	SurfaceDefault   Surface = "default"
	SurfaceTerminal  Surface = "terminal"
	SurfaceEditor    Surface = "editor"
	SurfaceBrowser   Surface = "browser"
	SurfaceNonStream Surface = "non_streaming"
)

// Chain is the declared priority order of providers for a dispatch: each
// entry may satisfy transcribe_batch, transcribe_stream, or both.
type Chain struct {
	Batch  []BatchProvider
	Stream []StreamingProvider
}

// Policy configures the dispatcher from the stt.* configuration block.
type Policy struct {
	StreamingEnabled       bool
	CloudFallbackThreshold float64 // default 0.85
}

// Dispatcher runs the hybrid fallback policy over a Chain: providers are
// tried in declared order, low-confidence results escalate to the next
// provider, and transient failures yield rather than abort.
type Dispatcher struct {
	chain  Chain
	policy Policy
}

func NewDispatcher(chain Chain, policy Policy) *Dispatcher {
	return &Dispatcher{chain: chain, policy: policy}
}

// Dispatch runs the full hybrid fallback policy over req and returns the
// chosen result, or the error of the first provider that fails with a
// non-fallback-eligible error (or of the last provider, once the chain is
// exhausted).
//
// Streaming dispatch itself — feeding chunks incrementally — is driven by
// the caller via OpenStream on a chosen StreamingProvider; Dispatch covers
// the batch path plus confidence-gated escalation, which is the part with
// a single well-defined call shape. The engine coordinator calls
// OpenStream directly when streaming is selected.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, surface Surface) (Result, error) {
	if len(d.chain.Batch) == 0 {
		return Result{}, engineerr.New(engineerr.KindConfig, errNoProviders)
	}

	var lastErr error
	for i, p := range d.chain.Batch {
		res, err := p.TranscribeBatch(ctx, req)
		if err != nil {
			lastErr = err
			if engineerr.IsFallbackEligible(err) && i < len(d.chain.Batch)-1 {
				continue
			}
			return Result{}, err
		}

		if res.Text == "" {
			// Empty transcripts terminate quietly — not an error, and no
			// further fallback is attempted.
			return res, nil
		}

		confidence := res.Confidence
		if confidence == 0 {
			confidence = 1.0 // absent confidence treated as 1.0, per GLOSSARY
		}
		if confidence >= d.policy.CloudFallbackThreshold || i == len(d.chain.Batch)-1 {
			return res, nil
		}

		// Confidence below threshold and another provider remains: escalate.
		escalated, err := d.escalate(ctx, req, d.chain.Batch[i+1:])
		if err != nil {
			lastErr = err
			return res, nil // keep the low-confidence result rather than fail the session
		}
		escalatedConfidence := escalated.Confidence
		if escalatedConfidence == 0 {
			escalatedConfidence = 1.0
		}
		if escalatedConfidence == confidence {
			return res, nil // identical confidence: declared order wins the tie
		}
		escalated.UsedFallback = true
		return escalated, nil
	}
	return Result{}, lastErr
}

// escalate tries the remaining providers in order, stopping at the first
// success. The tie-break between that result and the one that triggered
// escalation is applied by Dispatch.
func (d *Dispatcher) escalate(ctx context.Context, req Request, rest []BatchProvider) (Result, error) {
	var lastErr error
	for i, p := range rest {
		res, err := p.TranscribeBatch(ctx, req)
		if err != nil {
			lastErr = err
			if engineerr.IsFallbackEligible(err) && i < len(rest)-1 {
				continue
			}
			return Result{}, err
		}
		return res, nil
	}
	return Result{}, lastErr
}

// SelectsStreaming reports whether a session should open a streaming
// socket: streaming must be enabled, a streaming provider configured, and
// the surface must not force non-streaming.
func (d *Dispatcher) SelectsStreaming(surface Surface) bool {
	return d.policy.StreamingEnabled && len(d.chain.Stream) > 0 && surface != SurfaceNonStream
}

// StreamProvider returns the first configured streaming provider, per the
// declared priority order.
func (d *Dispatcher) StreamProvider() StreamingProvider {
	if len(d.chain.Stream) == 0 {
		return nil
	}
	return d.chain.Stream[0]
}

type errNoProvidersCause struct{}

func (errNoProvidersCause) Error() string { return "no batch STT providers configured" }

var errNoProviders = errNoProvidersCause{}
