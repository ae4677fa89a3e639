// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize condenses one source into a summary aimed at the
// research question.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultMaxContentChars = 10000

const promptTemplate = `%s
-----------
Using the above text, answer in short the following question:
> %s
-----------
if the question cannot be answered using the text, imply summarize the text.
Include all factual information, numbers, stats etc if available.`

// Stage produces one summary per fetched source.
type Stage struct {
	Generator generate.TextGenerator

	// MaxContentChars caps the source text, in characters, placed in the
	// prompt (default 10,000).
	MaxContentChars int

	Logger *zap.Logger
}

// New builds a Stage from the research settings.
func New(gen generate.TextGenerator, rc types.ResearchConfig, logger *zap.Logger) *Stage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stage{Generator: gen, MaxContentChars: rc.MaxContentChars, Logger: logger}
}

// Summarize always returns a Summary. Sentinel content is passed through
// as the summary text without a generation call, and a failed generation
// call yields a degraded summary stating the failure.
func (s *Stage) Summarize(ctx context.Context, question string, content types.SourceContent) types.Summary {
	sum := types.Summary{
		Kind:       content.Locator.Kind,
		Provenance: content.Locator.Provenance(),
	}
	if sum.Kind == "" {
		sum.Kind = types.SourceWeb
	}

	if content.Unavailable {
		sum.Text = content.Text
		sum.Degraded = true
		return sum
	}

	prompt := Prompt(question, Truncate(content.Text, s.maxChars()))
	out, err := s.Generator.Generate(ctx, generate.Request{
		Messages: []generate.Message{{Role: generate.RoleUser, Text: prompt}},
	})
	if err != nil {
		s.logger().Warn("summary generation failed",
			zap.String("source", sum.Provenance), zap.Error(err))
		sum.Text = fmt.Sprintf("Failed to summarize the source: %v", err)
		sum.Degraded = true
		return sum
	}

	sum.Text = strings.TrimSpace(out)
	return sum
}

func (s *Stage) maxChars() int {
	if s.MaxContentChars <= 0 {
		return defaultMaxContentChars
	}
	return s.MaxContentChars
}

func (s *Stage) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Prompt builds the summary instruction for text and question.
func Prompt(question, text string) string {
	return fmt.Sprintf(promptTemplate, text, question)
}

// Truncate returns the first n characters of text. Characters are runes, so
// multi-byte text is never split mid-character.
func Truncate(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
