// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the fan-out/fan-in pipeline: plan queries, collect
// sources per query, fetch and summarize each source, then hand the joined
// summaries to the report writer.
package research

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/research-assistant/internal/collect"
	"github.com/pdiddy/research-assistant/internal/fetch"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultConcurrency = 8

// QueryPlanner turns a question into search queries.
type QueryPlanner interface {
	Plan(ctx context.Context, question string) ([]string, error)
}

// Summarizer condenses one fetched source. It never fails; problems are
// reported inside the returned summary.
type Summarizer interface {
	Summarize(ctx context.Context, question string, content types.SourceContent) types.Summary
}

// Aggregator runs the research fan-out. Work for different queries and for
// different sources of one query runs concurrently, bounded by Concurrency
// in-flight external calls. Results land in pre-sized slots, so group order
// follows query order and summary order follows locator order regardless of
// completion order. A failing sibling never cancels the others.
type Aggregator struct {
	Planner    QueryPlanner
	Collector  collect.Collector
	Fetcher    fetch.Fetcher
	Summarizer Summarizer

	// Concurrency bounds simultaneous collect and fetch-then-summarize work
	// (default 8).
	Concurrency int

	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Research plans the question and gathers one summary group per query. The
// only error paths are planning failures and context cancellation; in both
// cases no partial research is returned.
func (a *Aggregator) Research(ctx context.Context, question string) (types.AggregatedResearch, error) {
	return a.research(ctx, question, a.logger())
}

func (a *Aggregator) research(ctx context.Context, question string, log *zap.Logger) (types.AggregatedResearch, error) {
	start := time.Now()
	queries, err := a.Planner.Plan(ctx, question)
	a.Metrics.ObserveStage(metrics.StagePlan, start)
	if err != nil {
		return types.AggregatedResearch{}, err
	}
	log.Info("planned research", zap.Strings("queries", queries))

	sem := semaphore.NewWeighted(int64(a.concurrency()))
	groups := make([][]types.Summary, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			groups[i] = a.researchQuery(ctx, sem, question, q, log.With(zap.Int("query_index", i)))
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return types.AggregatedResearch{}, err
	}

	r := types.AggregatedResearch{Question: question, Queries: queries, Groups: groups}
	log.Info("research gathered",
		zap.Int("groups", len(groups)), zap.Int("summaries", r.SummaryCount()),
		zap.Duration("elapsed", time.Since(start)))
	return r, nil
}

// researchQuery collects locators for one query and summarizes each into its
// slot. A collection failure yields an empty group.
func (a *Aggregator) researchQuery(ctx context.Context, sem *semaphore.Weighted, question, query string, log *zap.Logger) []types.Summary {
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	start := time.Now()
	locs, err := a.Collector.Collect(ctx, query)
	a.Metrics.ObserveStage(metrics.StageCollect, start)
	sem.Release(1)

	if err != nil {
		a.Metrics.CollectionFailure()
		log.Warn("source collection failed", zap.String("query", query), zap.Error(err))
		return []types.Summary{}
	}
	log.Debug("collected sources", zap.String("query", query), zap.Int("sources", len(locs)))

	summaries := make([]types.Summary, len(locs))
	var g errgroup.Group
	for j, loc := range locs {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				summaries[j] = types.Summary{Kind: loc.Kind, Provenance: loc.Provenance(), Text: err.Error(), Degraded: true}
				return nil
			}
			defer sem.Release(1)

			content := a.fetch(ctx, loc, log)
			start := time.Now()
			summaries[j] = a.Summarizer.Summarize(ctx, question, content)
			a.Metrics.ObserveStage(metrics.StageSummarize, start)
			return nil
		})
	}
	g.Wait()
	return summaries
}

// fetch resolves loc, converting transport faults into sentinel content.
func (a *Aggregator) fetch(ctx context.Context, loc types.SourceLocator, log *zap.Logger) types.SourceContent {
	start := time.Now()
	content, err := a.Fetcher.Fetch(ctx, loc)
	a.Metrics.ObserveStage(metrics.StageFetch, start)

	if err != nil {
		var te *fetch.TransportError
		if errors.As(err, &te) {
			err = te.Err
		}
		content = types.UnavailableContent(loc, fetch.FailureText(err.Error()))
	}
	if content.Unavailable {
		a.Metrics.FetchFailure()
		log.Warn("source unavailable", zap.String("source", loc.Provenance()), zap.String("reason", content.Text))
	}
	return content
}

func (a *Aggregator) concurrency() int {
	if a.Concurrency <= 0 {
		return defaultConcurrency
	}
	return a.Concurrency
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
