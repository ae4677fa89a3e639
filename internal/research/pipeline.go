// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/collect"
	"github.com/pdiddy/research-assistant/internal/fetch"
	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/plan"
	"github.com/pdiddy/research-assistant/internal/report"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Stage names reported by StageError.
const (
	StagePlanning = "planning"
	StageResearch = "research"
	StageReport   = "report"
)

// StageError is the single terminal error of a pipeline run, naming the
// stage that failed.
type StageError struct {
	Stage string
	RunID string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ReportWriter turns the question and flattened research into report text.
type ReportWriter interface {
	Write(ctx context.Context, question, research string) (string, error)
}

// Pipeline runs research and then writes the report.
type Pipeline struct {
	Aggregator *Aggregator
	Writer     ReportWriter
	Logger     *zap.Logger
	Metrics    *metrics.Recorder
}

// Components are the collaborators a Pipeline is assembled from.
type Components struct {
	Generator generate.TextGenerator
	Collector collect.Collector
	Fetcher   fetch.Fetcher
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
}

// NewPipeline assembles the planner, summary stage, and writer around one
// generator, instrumenting each stage's generation calls separately.
func NewPipeline(cfg types.AssistantConfig, c Components) *Pipeline {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := c.Metrics

	planner := plan.NewPlanner(m.Instrument(metrics.StagePlan, c.Generator), cfg.Research, cfg.Generation, logger.Named("plan"))
	summarizer := summarize.New(m.Instrument(metrics.StageSummarize, c.Generator), cfg.Research, logger.Named("summarize"))
	writer := report.New(m.Instrument(metrics.StageReport, c.Generator), logger.Named("report"))

	return &Pipeline{
		Aggregator: &Aggregator{
			Planner:     planner,
			Collector:   c.Collector,
			Fetcher:     c.Fetcher,
			Summarizer:  summarizer,
			Concurrency: cfg.Research.Concurrency,
			Logger:      logger.Named("research"),
			Metrics:     m,
		},
		Writer:  writer,
		Logger:  logger,
		Metrics: m,
	}
}

// Research runs only the fan-out, tagging the run with a fresh run ID.
func (p *Pipeline) Research(ctx context.Context, question string) (types.AggregatedResearch, error) {
	runID := uuid.NewString()
	r, err := p.Aggregator.research(ctx, question, p.Aggregator.logger().With(zap.String("run_id", runID)))
	if err != nil {
		return types.AggregatedResearch{}, researchError(runID, err)
	}
	return r, nil
}

// Run answers question with a complete report, or returns a *StageError
// naming the failed stage.
func (p *Pipeline) Run(ctx context.Context, question string) (types.Report, error) {
	runID := uuid.NewString()
	log := p.logger().With(zap.String("run_id", runID))
	log.Info("research run started", zap.String("question", question))

	r, err := p.Aggregator.research(ctx, question, p.Aggregator.logger().With(zap.String("run_id", runID)))
	if err != nil {
		log.Error("research run failed", zap.Error(err))
		return types.Report{}, researchError(runID, err)
	}

	start := time.Now()
	text, err := p.Writer.Write(ctx, question, r.Text())
	p.Metrics.ObserveStage(metrics.StageReport, start)
	if err != nil {
		log.Error("report writing failed", zap.Error(err))
		return types.Report{}, &StageError{Stage: StageReport, RunID: runID, Err: err}
	}

	log.Info("research run finished", zap.Int("sources", len(r.Sources())))
	return types.Report{
		Question: question,
		Text:     text,
		Queries:  r.Queries,
		Sources:  r.Sources(),
	}, nil
}

// researchError attributes an aggregator error: cancellation or expiry is
// reported against the research stage, anything else came from planning.
func researchError(runID string, err error) error {
	stage := StagePlanning
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		stage = StageResearch
	}
	return &StageError{Stage: stage, RunID: runID, Err: err}
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
