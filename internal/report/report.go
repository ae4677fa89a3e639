// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the final long-form answer from aggregated research.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/generate"
)

// SystemPrompt fixes the writer's role.
const SystemPrompt = "You are an AI critical thinker research assistant. Your sole purpose is to " +
	"write well written, critically acclaimed, objective and structured reports on given text."

const userTemplate = `Information:
--------
%s
--------
Using the above information, answer the following question or topic: "%s" in a detailed report -- ` +
	`The report should focus on the answer to the question, should be well structured, informative, ` +
	`in depth, with facts and numbers if available and a minimum of 1,200 words.
You should strive to write the report as long as you can using all relevant and necessary information provided.
You must write the report with markdown syntax.
You MUST determine your own concrete and valid opinion based on the given information. Do NOT deter to general and meaningless conclusions.
Write all used source urls at the end of the report, and make sure to not add duplicated sources, but only one reference for each.
You must write the report in apa format.
Please do your best, this is very important to my career.`

// Writer turns a question and the flattened research into a markdown report.
// Word count and source-list dedup are instructions to the generator, not
// checked on the output.
type Writer struct {
	Generator generate.TextGenerator
	Logger    *zap.Logger
}

// New builds a Writer.
func New(gen generate.TextGenerator, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{Generator: gen, Logger: logger}
}

// Write makes one generation call with the provider's default temperature.
// Generation failures are returned unchanged.
func (w *Writer) Write(ctx context.Context, question, research string) (string, error) {
	prompt := UserPrompt(question, research)
	if w.Logger != nil {
		w.Logger.Debug("report prompt", zap.Int("chars", len(prompt)))
	}

	out, err := w.Generator.Generate(ctx, generate.Request{
		Messages: []generate.Message{
			{Role: generate.RoleSystem, Text: SystemPrompt},
			{Role: generate.RoleUser, Text: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("writer returned an empty report")
	}
	return out, nil
}

// UserPrompt builds the writing instruction around the research text.
func UserPrompt(question, research string) string {
	return fmt.Sprintf(userTemplate, research, question)
}
