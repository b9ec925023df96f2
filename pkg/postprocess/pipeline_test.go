package postprocess

import (
	"context"
	"errors"
	"testing"
)

type mockStageProvider struct {
	tag     string
	out     string
	latency int64
	err     error
	calls   int
}

func (m *mockStageProvider) Tag() string { return m.tag }

func (m *mockStageProvider) Refine(ctx context.Context, text string, pctx Context, prompt string) (Result, error) {
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return Result{Text: m.out, LatencyMs: m.latency, Modified: m.out != text}, nil
}

func TestPipeline_DisabledIsIdempotent(t *testing.T) {
	p := NewPipeline([]StageDescriptor{{Name: "x", ProviderTag: "x", Enabled: true}}, nil, false, true, 1000)
	res, outcomes := p.Run(context.Background(), "raw text", Context{})
	if res.Text != "raw text" || res.Modified {
		t.Errorf("expected unchanged input, got %+v", res)
	}
	if outcomes != nil {
		t.Errorf("expected no stage outcomes, got %v", outcomes)
	}
}

func TestPipeline_EmptyStagesIsIdempotent(t *testing.T) {
	p := NewPipeline(nil, nil, true, true, 1000)
	res, _ := p.Run(context.Background(), "raw text", Context{})
	if res.Text != "raw text" || res.Modified {
		t.Errorf("expected unchanged input, got %+v", res)
	}
}

func TestPipeline_ChainsStageOutputInOrder(t *testing.T) {
	a := &mockStageProvider{tag: "a", out: "stage-a-out", latency: 10}
	b := &mockStageProvider{tag: "b", out: "stage-b-out", latency: 20}
	p := NewPipeline(
		[]StageDescriptor{{Name: "first", ProviderTag: "a", Enabled: true}, {Name: "second", ProviderTag: "b", Enabled: true}},
		map[string]StageProvider{"a": a, "b": b},
		true, true, 1000,
	)
	res, outcomes := p.Run(context.Background(), "raw", Context{})
	if res.Text != "stage-b-out" {
		t.Errorf("expected final stage's output, got %q", res.Text)
	}
	if !res.Modified {
		t.Error("expected Modified=true")
	}
	if len(outcomes) != 2 || !outcomes[0].Succeeded || !outcomes[1].Succeeded {
		t.Errorf("expected two successful outcomes, got %+v", outcomes)
	}
	if res.LatencyMs != 30 {
		t.Errorf("expected summed latency 30, got %d", res.LatencyMs)
	}
}

func TestPipeline_SkipsDisabledStages(t *testing.T) {
	a := &mockStageProvider{tag: "a", out: "a-out"}
	p := NewPipeline(
		[]StageDescriptor{{Name: "skip", ProviderTag: "a", Enabled: false}},
		map[string]StageProvider{"a": a},
		true, true, 1000,
	)
	res, outcomes := p.Run(context.Background(), "raw", Context{})
	if res.Text != "raw" || a.calls != 0 {
		t.Errorf("expected disabled stage never invoked, got %+v calls=%d", res, a.calls)
	}
	if outcomes != nil {
		t.Errorf("expected no outcomes for an all-disabled pipeline, got %v", outcomes)
	}
}

func TestPipeline_ContinueOnErrorKeepsPriorText(t *testing.T) {
	failing := &mockStageProvider{tag: "fail", err: errors.New("boom")}
	ok := &mockStageProvider{tag: "ok", out: "recovered"}
	p := NewPipeline(
		[]StageDescriptor{{Name: "first", ProviderTag: "fail", Enabled: true}, {Name: "second", ProviderTag: "ok", Enabled: true}},
		map[string]StageProvider{"fail": failing, "ok": ok},
		true, true, 1000,
	)
	res, outcomes := p.Run(context.Background(), "raw", Context{})
	if res.Text != "recovered" {
		t.Errorf("expected the pipeline to continue past the failed stage, got %q", res.Text)
	}
	if outcomes[0].Succeeded {
		t.Error("expected first outcome marked failed")
	}
}

func TestPipeline_HaltsOnErrorWhenContinueOnErrorDisabled(t *testing.T) {
	failing := &mockStageProvider{tag: "fail", err: errors.New("boom")}
	ok := &mockStageProvider{tag: "ok", out: "unreachable"}
	p := NewPipeline(
		[]StageDescriptor{{Name: "first", ProviderTag: "fail", Enabled: true}, {Name: "second", ProviderTag: "ok", Enabled: true}},
		map[string]StageProvider{"fail": failing, "ok": ok},
		true, false, 1000,
	)
	res, _ := p.Run(context.Background(), "raw", Context{})
	if res.Text != "raw" {
		t.Errorf("expected last successful text (input) preserved, got %q", res.Text)
	}
	if ok.calls != 0 {
		t.Error("expected the pipeline to halt before the second stage")
	}
}

func TestPipeline_AbortsRemainingStagesOnBudgetOverrun(t *testing.T) {
	slow := &mockStageProvider{tag: "slow", out: "slow-out", latency: 5000}
	next := &mockStageProvider{tag: "next", out: "next-out"}
	p := NewPipeline(
		[]StageDescriptor{{Name: "slow", ProviderTag: "slow", Enabled: true}, {Name: "next", ProviderTag: "next", Enabled: true}},
		map[string]StageProvider{"slow": slow, "next": next},
		true, true, 1000,
	)
	res, outcomes := p.Run(context.Background(), "raw", Context{})
	if res.Text != "slow-out" {
		t.Errorf("expected partial result from the first stage kept, got %q", res.Text)
	}
	if next.calls != 0 {
		t.Error("expected the second stage skipped once the budget is exhausted")
	}
	if len(outcomes) != 1 {
		t.Errorf("expected only the first stage's outcome, got %v", outcomes)
	}
}

func TestBuildPrompt_PrefixesTerminalMarkerOnlyForTerminalSurface(t *testing.T) {
	if got := BuildPrompt("ls -la", Context{TargetSurface: SurfaceTerminal}); got == "ls -la" {
		t.Error("expected terminal marker prefix")
	}
	if got := BuildPrompt("hello", Context{TargetSurface: SurfaceDefault}); got != "hello" {
		t.Errorf("expected no prefix for default surface, got %q", got)
	}
}
