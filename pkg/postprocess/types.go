// Package postprocess refines transcribed text through an ordered list of
// stages, each backed by a configured provider, with continue-on-error
// degradation and a total-latency budget.
package postprocess

import "context"

// TargetSurface classifies the focused surface the text will land in.
type TargetSurface int

const (
	SurfaceDefault TargetSurface = iota
	SurfaceTerminal
	SurfaceEditor
	SurfaceBrowser
)

// Context carries what a stage may want to know about the transcription
// it is refining.
type Context struct {
	Language      string
	Confidence    float64
	AudioDuration float64
	TargetSurface TargetSurface
	PreviousText  string
}

// Result is one stage invocation's outcome.
type Result struct {
	Text       string
	LatencyMs  int64
	TokensUsed int
	Modified   bool
}

// StageDescriptor names one configured stage. Stages run strictly in
// declared order.
type StageDescriptor struct {
	Name           string
	ProviderTag    string
	Enabled        bool
	PromptOverride string
}

// StageProvider refines one piece of text. Implementations share the same
// request contract: a fixed dictation-formatting system prompt (unless
// PromptOverride is set), temperature 0.1, max_tokens 1024 by default.
type StageProvider interface {
	Refine(ctx context.Context, text string, pctx Context, prompt string) (Result, error)
	Tag() string
}

// DefaultSystemPrompt is the fixed instruction shared by every stage
// provider, unless a StageDescriptor carries a PromptOverride.
const DefaultSystemPrompt = "format raw dictation into conventional prose with punctuation and capitalization; correct obvious homophones; preserve meaning; do not add commentary."

// TerminalPromptMarker prefixes the user prompt when the target surface is
// Terminal, so the provider preserves shell syntax instead of reformatting
// it into prose.
const TerminalPromptMarker = "[terminal: preserve shell syntax, do not add punctuation or reflow commands]\n"

// DefaultTemperature and DefaultMaxTokens are the request-contract
// defaults.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1024
)

// BuildPrompt returns the effective user-facing prompt for one stage
// invocation: the raw text, prefixed with the terminal marker when the
// target surface is Terminal.
func BuildPrompt(text string, pctx Context) string {
	if pctx.TargetSurface == SurfaceTerminal {
		return TerminalPromptMarker + text
	}
	return text
}
