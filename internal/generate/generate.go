// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate wraps text-generation services behind a single capability:
// an ordered list of role-tagged messages in, generated text out.
package generate

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Role tags a message in a generation request.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry in a generation request.
type Message struct {
	Role Role
	Text string
}

// Request is a single generation call.
type Request struct {
	Messages []Message

	// Temperature is the determinism knob. Nil leaves the provider default.
	Temperature *float64
}

// Temperature returns a determinism setting for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// TextGenerator abstracts the generation service so stages and tests can
// substitute implementations.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// GenerationError reports a failed generation call: transport, auth, rate
// limiting, or an unusable response.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// New builds the generator selected by cfg.Provider.
func New(cfg types.GenerationConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is not configured", cfg.Provider)
	}
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case types.ProviderAnthropic:
		return NewClaude(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}

// splitSystem separates system messages from the conversation for providers
// that take the system prompt as a top-level field.
func splitSystem(msgs []Message) (string, []Message) {
	var system string
	var rest []Message
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Text
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
