package postprocess

import (
	"context"
	"time"
)

// Pipeline runs an ordered set of stages over transcribed text, each
// stage's output feeding the next, under a shared latency budget and a
// continue-on-error policy.
type Pipeline struct {
	Stages          []StageDescriptor
	Providers       map[string]StageProvider // keyed by ProviderTag
	Enabled         bool
	ContinueOnError bool
	TotalBudgetMs   int64
}

// NewPipeline builds a Pipeline from the postprocess.* configuration
// block.
func NewPipeline(stages []StageDescriptor, providers map[string]StageProvider, enabled, continueOnError bool, totalBudgetMs int64) *Pipeline {
	if totalBudgetMs <= 0 {
		totalBudgetMs = 1000
	}
	return &Pipeline{
		Stages:          stages,
		Providers:       providers,
		Enabled:         enabled,
		ContinueOnError: continueOnError,
		TotalBudgetMs:   totalBudgetMs,
	}
}

// stageTimeout caps a single stage's provider call, independent of the
// pipeline's total latency budget. A stage that overruns it fails like any
// other stage error and the continue_on_error policy decides what happens
// next.
const stageTimeout = 2 * time.Second

// StageOutcome records what happened for one stage, for callers that want
// to log or alert per-stage.
type StageOutcome struct {
	Name      string
	Succeeded bool
	LatencyMs int64
	Err       error
}

// Run executes the enabled stages in order against text, honoring the
// total-latency budget and continue_on_error policy. A disabled or empty
// pipeline returns the input unchanged with Modified=false.
func (p *Pipeline) Run(ctx context.Context, text string, pctx Context) (Result, []StageOutcome) {
	if p == nil || !p.Enabled || len(p.Stages) == 0 {
		return Result{Text: text, Modified: false}, nil
	}

	current := text
	var outcomes []StageOutcome
	var totalMs int64
	var totalTokens int
	modified := false

	for _, stage := range p.Stages {
		if !stage.Enabled {
			continue
		}
		if p.TotalBudgetMs > 0 && totalMs >= p.TotalBudgetMs {
			// Budget already exhausted: abort remaining stages, keep the
			// last successful text (partial result).
			break
		}

		provider := p.Providers[stage.ProviderTag]
		if provider == nil {
			outcomes = append(outcomes, StageOutcome{Name: stage.Name, Succeeded: false, Err: errNoProvider(stage.ProviderTag)})
			if !p.ContinueOnError {
				break
			}
			continue
		}

		prompt := stage.PromptOverride
		if prompt == "" {
			prompt = DefaultSystemPrompt
		}

		stageCtx, cancel := context.WithTimeout(ctx, stageTimeout)
		start := time.Now()
		res, err := provider.Refine(stageCtx, current, pctx, prompt)
		cancel()
		elapsed := time.Since(start).Milliseconds()

		if err != nil {
			outcomes = append(outcomes, StageOutcome{Name: stage.Name, Succeeded: false, LatencyMs: elapsed, Err: err})
			totalMs += elapsed
			if !p.ContinueOnError {
				break
			}
			continue
		}

		current = res.Text
		modified = true
		totalTokens += res.TokensUsed
		totalMs += res.LatencyMs
		outcomes = append(outcomes, StageOutcome{Name: stage.Name, Succeeded: true, LatencyMs: res.LatencyMs})
	}

	return Result{Text: current, LatencyMs: totalMs, TokensUsed: totalTokens, Modified: modified}, outcomes
}

type errNoProvider string

func (e errNoProvider) Error() string { return "postprocess: no provider registered for tag " + string(e) }
