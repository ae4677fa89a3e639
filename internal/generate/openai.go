// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// OpenAIBackend calls the OpenAI Chat Completions API, or any server that
// speaks it when BaseURL is set.
type OpenAIBackend struct {
	Model     string
	MaxTokens int
	client    openai.Client
}

// NewOpenAI builds an OpenAIBackend from generation settings. The SDK's own
// retry loop is disabled; rate limiting is the caller's concern.
func NewOpenAI(cfg types.GenerationConfig) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.RateLimitRetries),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", cfg.UserAgent))
	}
	return &OpenAIBackend{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		client:    openai.NewClient(opts...),
	}
}

// Generate sends the messages as a chat completion and returns the first choice.
func (o *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Text))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Text))
		}
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if o.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.MaxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &GenerationError{Backend: "openai", Err: err}
	}
	if len(completion.Choices) == 0 {
		return "", &GenerationError{Backend: "openai", Err: fmt.Errorf("response has no choices")}
	}
	return completion.Choices[0].Message.Content, nil
}
