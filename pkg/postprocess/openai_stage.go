package postprocess

import (
	"context"
	"errors"
	"fmt"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// OpenAIStage is the default chat-completion stage provider: a single
// system-prompt-plus-text call against an OpenAI-compatible endpoint, no
// streaming, no tool calling.
type OpenAIStage struct {
	client oai.Client
	model  string
	tag    string
}

// NewOpenAIStage constructs the default stage provider. baseURL is optional
// and overrides the API host (used for OpenAI-compatible endpoints).
func NewOpenAIStage(tag, apiKey, model, baseURL string) (*OpenAIStage, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("postprocess: openai stage requires an API key")
	}
	if model == "" {
		return nil, fmt.Errorf("postprocess: openai stage requires a model")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIStage{client: oai.NewClient(opts...), model: model, tag: tag}, nil
}

func (s *OpenAIStage) Tag() string {
	if s.tag != "" {
		return s.tag
	}
	return "openai"
}

// Refine implements StageProvider: system prompt + user text, temperature
// 0.1, max_tokens 1024, no streaming.
func (s *OpenAIStage) Refine(ctx context.Context, text string, pctx Context, prompt string) (Result, error) {
	userPrompt := BuildPrompt(text, pctx)

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(prompt),
			oai.UserMessage(userPrompt),
		},
		Temperature:         param.NewOpt(DefaultTemperature),
		MaxCompletionTokens: param.NewOpt(int64(DefaultMaxTokens)),
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return Result{}, engineerr.New(classifyOpenAIErr(err), fmt.Errorf("%s: chat completion: %w", s.Tag(), err))
	}
	if len(resp.Choices) == 0 {
		return Result{}, engineerr.New(engineerr.KindInternal, fmt.Errorf("%s: empty choices in response", s.Tag()))
	}

	out := resp.Choices[0].Message.Content
	return Result{
		Text:       out,
		LatencyMs:  elapsed,
		TokensUsed: int(resp.Usage.TotalTokens),
		Modified:   out != text,
	}, nil
}

// classifyOpenAIErr maps an openai-go client error to an engineerr.Kind.
// The SDK surfaces HTTP failures as *oai.Error; anything else (dial
// failure, context deadline) is treated as transient so the pipeline's
// continue_on_error policy can degrade gracefully instead of aborting the
// session.
func classifyOpenAIErr(err error) engineerr.Kind {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return engineerr.KindAuth
		case 429:
			return engineerr.KindRateLimited
		default:
			if apiErr.StatusCode >= 500 {
				return engineerr.KindNetworkTransient
			}
			return engineerr.KindInternal
		}
	}
	return engineerr.KindNetworkTransient
}
