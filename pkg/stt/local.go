package stt

import (
	"context"
	"time"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// Model is the opaque handle the model catalog hands back from Load. The
// engine never inspects it — it only passes audio through InferFunc.
type Model interface {
	ID() string
}

// InferFunc runs in-process inference against a loaded model. The catalog
// and its on-disk layout belong to the host; this is the one seam the
// engine owns.
type InferFunc func(ctx context.Context, model Model, pcm []byte, language string) (text string, confidence float64, err error)

// LocalProvider transcribes a sealed utterance in-process via a loaded
// model. InferFunc keeps it decoupled from any particular inference
// runtime — whisper.cpp bindings, ONNX, or anything else the host links
// in.
type LocalProvider struct {
	model Model
	infer InferFunc
}

func NewLocalProvider(model Model, infer InferFunc) *LocalProvider {
	return &LocalProvider{model: model, infer: infer}
}

func (p *LocalProvider) TranscribeBatch(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	text, confidence, err := p.infer(ctx, p.model, req.AudioRef, req.Language)
	if err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}
	return Result{
		Text:        text,
		Confidence:  confidence,
		Language:    req.Language,
		DurationS:   req.DurationS,
		LatencyMs:   time.Since(start).Milliseconds(),
		ProviderTag: p.Name(),
	}, nil
}

func (p *LocalProvider) Name() string { return "local" }
