// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records Prometheus counters and stage durations for the
// research pipeline. A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/research-assistant/internal/generate"
)

const namespace = "research_assistant"

// Stage labels.
const (
	StagePlan      = "plan"
	StageCollect   = "collect"
	StageFetch     = "fetch"
	StageSummarize = "summarize"
	StageReport    = "report"
)

// Recorder owns a registry and the pipeline's metric vectors.
type Recorder struct {
	registry           *prometheus.Registry
	generationCalls    *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	fetchFailures      prometheus.Counter
	collectionFailures prometheus.Counter
	stageDuration      *prometheus.HistogramVec
	generationDuration *prometheus.HistogramVec
}

// New builds a Recorder on a fresh registry that also carries the Go runtime
// and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generationCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_calls_total",
			Help:      "Text generation calls by pipeline stage.",
		}, []string{"stage"}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Failed text generation calls by pipeline stage.",
		}, []string{"stage"}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Sources that produced sentinel content instead of text.",
		}),
		collectionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_failures_total",
			Help:      "Search queries whose source collection failed.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of text generation calls by pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
	}
	r.registry.MustRegister(
		r.generationCalls,
		r.generationFailures,
		r.fetchFailures,
		r.collectionFailures,
		r.stageDuration,
		r.generationDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GenerationCall counts one generation call for stage and, when err is
// non-nil, one failure.
func (r *Recorder) GenerationCall(stage string, err error) {
	if r == nil {
		return
	}
	r.generationCalls.WithLabelValues(stage).Inc()
	if err != nil {
		r.generationFailures.WithLabelValues(stage).Inc()
	}
}

// FetchFailure counts one source replaced by sentinel content.
func (r *Recorder) FetchFailure() {
	if r == nil {
		return
	}
	r.fetchFailures.Inc()
}

// CollectionFailure counts one query whose collection failed.
func (r *Recorder) CollectionFailure() {
	if r == nil {
		return
	}
	r.collectionFailures.Inc()
}

// ObserveStage records the time since start for stage.
func (r *Recorder) ObserveStage(stage string, start time.Time) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Instrument wraps gen so every call is counted and timed under stage in
// the generation series. Stage durations are recorded by the caller.
func (r *Recorder) Instrument(stage string, gen generate.TextGenerator) generate.TextGenerator {
	if r == nil {
		return gen
	}
	return generate.GeneratorFunc(func(ctx context.Context, req generate.Request) (string, error) {
		start := time.Now()
		out, err := gen.Generate(ctx, req)
		r.GenerationCall(stage, err)
		r.generationDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		return out, err
	})
}
