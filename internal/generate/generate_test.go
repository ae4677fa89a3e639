// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.GenerationConfig
		wantErr string
	}{
		{"openai", types.GenerationConfig{Provider: types.ProviderOpenAI, APIKey: "k"}, ""},
		{"default provider", types.GenerationConfig{APIKey: "k"}, ""},
		{"anthropic", types.GenerationConfig{Provider: types.ProviderAnthropic, APIKey: "k"}, ""},
		{"missing key", types.GenerationConfig{Provider: types.ProviderOpenAI}, "API key"},
		{"unknown", types.GenerationConfig{Provider: "cohere", APIKey: "k"}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: RoleSystem, Text: "be objective"},
		{Role: RoleUser, Text: "question"},
	})
	assert.Equal(t, "be objective", system)
	require.Len(t, rest, 1)
	assert.Equal(t, RoleUser, rest[0].Role)
}

func TestClaudeBackendGenerate(t *testing.T) {
	var got claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	}))
	defer ts.Close()

	c := NewClaude(types.GenerationConfig{APIKey: "secret", Model: "claude-test", BaseURL: ts.URL})
	text, err := c.Generate(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Text: "sys"},
			{Role: RoleUser, Text: "hello"},
		},
		Temperature: Temperature(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, "sys", got.System)
	assert.Equal(t, defaultClaudeMaxTokens, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestClaudeBackendOmitsTemperatureByDefault(t *testing.T) {
	var raw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer ts.Close()

	c := NewClaude(types.GenerationConfig{APIKey: "k", BaseURL: ts.URL})
	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	require.NoError(t, err)
	_, present := raw["temperature"]
	assert.False(t, present)
}

func TestClaudeBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, "HTTP 401"},
		{"rate limited", http.StatusTooManyRequests, `slow down`, "HTTP 429"},
		{"empty content", http.StatusOK, `{"content":[]}`, "no text content"},
		{"bad json", http.StatusOK, `not json`, "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewClaude(types.GenerationConfig{APIKey: "k", BaseURL: ts.URL})
			_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
			require.Error(t, err)

			var ge *GenerationError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, "anthropic", ge.Backend)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaudeBackendRequiresUserMessage(t *testing.T) {
	c := NewClaude(types.GenerationConfig{APIKey: "k"})
	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleSystem, Text: "only system"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user message")
}

func TestOpenAIBackendGenerate(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-test",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "generated"}}]
		}`))
	}))
	defer ts.Close()

	o := NewOpenAI(types.GenerationConfig{APIKey: "secret", Model: "gpt-test", BaseURL: ts.URL + "/"})
	text, err := o.Generate(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Text: "sys"},
			{Role: RoleUser, Text: "hello"},
		},
		Temperature: Temperature(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "generated", text)

	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, float64(0), got["temperature"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	o := NewOpenAI(types.GenerationConfig{APIKey: "bad", Model: "gpt-test", BaseURL: ts.URL + "/"})
	_, err := o.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	require.Error(t, err)

	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "openai", ge.Backend)
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func(_ context.Context, req Request) (string, error) {
		return req.Messages[0].Text, nil
	})
	out, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "echo"}}})
	require.NoError(t, err)
	assert.Equal(t, "echo", out)
}
