// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultClaudeMaxTokens = 4096

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	URL       string
	Client    *httputil.Client
}

// NewClaude builds a ClaudeBackend from generation settings.
func NewClaude(cfg types.GenerationConfig) *ClaudeBackend {
	return &ClaudeBackend{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		URL:       cfg.BaseURL,
		Client:    httputil.New(cfg.HTTPConfig),
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generate sends the messages to the Claude API and returns the concatenated
// text blocks of the reply.
func (c *ClaudeBackend) Generate(ctx context.Context, req Request) (string, error) {
	text, err := c.generate(ctx, req)
	if err != nil {
		return "", &GenerationError{Backend: "anthropic", Err: err}
	}
	return text, nil
}

func (c *ClaudeBackend) generate(ctx context.Context, req Request) (string, error) {
	system, rest := splitSystem(req.Messages)
	if len(rest) == 0 {
		return "", fmt.Errorf("request has no user message")
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: req.Temperature,
	}
	for _, m := range rest {
		reqBody.Messages = append(reqBody.Messages, claudeMessage{Role: string(m.Role), Content: m.Text})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := c.URL
	if url == "" {
		url = claudeAPIURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = &httputil.Client{}
	}

	resp, err := client.Do(ctx, httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("Claude API: %w", err)
	}
	defer resp.Body.Close()

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return b.String(), nil
}
