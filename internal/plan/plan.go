// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a research question into a fixed number of search
// queries with one generation call and a strict JSON list parse.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultQueries = 3

// PlanningError reports a question that cannot be planned or generator
// output that is not a list of exactly the requested number of queries.
type PlanningError struct {
	// Output is the raw generator text, empty when planning never reached generation.
	Output string
	Err    error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning search queries: %v", e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// ErrEmptyQuestion is wrapped by the PlanningError returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// Planner asks the generator for search queries that together form an
// objective view of the question.
type Planner struct {
	Generator generate.TextGenerator

	// Queries is the number of queries to plan (default 3).
	Queries int

	// Temperature is the determinism knob for the planning call.
	Temperature float64

	Logger *zap.Logger
}

// NewPlanner builds a Planner from research and generation settings.
func NewPlanner(gen generate.TextGenerator, rc types.ResearchConfig, gc types.GenerationConfig, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		Generator:   gen,
		Queries:     rc.Queries,
		Temperature: gc.PlannerTemperature,
		Logger:      logger,
	}
}

func (p *Planner) count() int {
	if p.Queries <= 0 {
		return defaultQueries
	}
	return p.Queries
}

// Plan returns exactly Queries search queries in generation order. Generation
// failures are returned unchanged; anything else is a *PlanningError.
func (p *Planner) Plan(ctx context.Context, question string) ([]string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &PlanningError{Err: ErrEmptyQuestion}
	}

	k := p.count()
	prompt := Prompt(question, k)
	p.logger().Debug("planning prompt", zap.String("prompt", prompt))

	out, err := p.Generator.Generate(ctx, generate.Request{
		Messages:    []generate.Message{{Role: generate.RoleUser, Text: prompt}},
		Temperature: generate.Temperature(p.Temperature),
	})
	if err != nil {
		return nil, err
	}

	queries, err := ParseQueries(out, k)
	if err != nil {
		p.logger().Warn("unparseable planner output", zap.String("output", out), zap.Error(err))
		return nil, &PlanningError{Output: out, Err: err}
	}
	p.logger().Info("planned queries", zap.Strings("queries", queries))
	return queries, nil
}

func (p *Planner) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Prompt builds the planning instruction for k queries.
func Prompt(question string, k int) string {
	examples := make([]string, k)
	for i := range examples {
		examples[i] = fmt.Sprintf("%q", fmt.Sprintf("query %d", i+1))
	}
	return fmt.Sprintf("Write %d google search queries to search online that form an "+
		"objective opinion from the following: %s\n"+
		"You must respond with a list of strings in the following format: [%s].",
		k, question, strings.Join(examples, ", "))
}

// ParseQueries decodes output as a JSON array of exactly k distinct, non-empty
// strings. Surrounding whitespace is the only tolerated deviation: code fences,
// prose, or trailing text are rejected.
func ParseQueries(output string, k int) ([]string, error) {
	var queries []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &queries); err != nil {
		return nil, fmt.Errorf("output is not a JSON list of strings: %w", err)
	}
	if len(queries) != k {
		return nil, fmt.Errorf("expected %d queries, got %d", k, len(queries))
	}

	seen := make(map[string]bool, k)
	for i, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			return nil, fmt.Errorf("query %d is empty", i+1)
		}
		if seen[q] {
			return nil, fmt.Errorf("query %d duplicates %q", i+1, q)
		}
		seen[q] = true
		queries[i] = q
	}
	return queries, nil
}
