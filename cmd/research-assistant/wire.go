// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/collect"
	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/internal/fetch"
	"github.com/pdiddy/research-assistant/internal/generate"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/research"
	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// addGenerationFlags registers the flags that override generation settings.
func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "generation provider: openai or anthropic")
	cmd.Flags().String("model", "", "generation model identifier")
	cmd.Flags().String("api-key", "", "generation API key (default: from config or .secrets/)")
}

// addResearchFlags registers the flags that shape the fan-out.
func addResearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "source backend: web, arxiv, semantic-scholar, openalex, or corpus (default from config)")
	cmd.Flags().Int("queries", 0, "number of search queries to plan (0 = config default)")
	cmd.Flags().Int("sources-per-query", 0, "web results kept per query (0 = config default)")
	cmd.Flags().Int("concurrency", 0, "maximum in-flight sources (0 = config default)")
}

// configFromFlags applies command flags over appConfig.
func configFromFlags(cmd *cobra.Command) types.AssistantConfig {
	cfg := appConfig
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.Generation.Provider = types.GeneratorProvider(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Generation.Model = v
	}
	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.Search.Mode = types.SourceMode(v)
	}
	if v, _ := cmd.Flags().GetInt("queries"); v > 0 {
		cfg.Research.Queries = v
	}
	if v, _ := cmd.Flags().GetInt("sources-per-query"); v > 0 {
		cfg.Research.SourcesPerQuery = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Research.Concurrency = v
	}
	return cfg
}

// buildGenerator resolves the provider's API key and builds the generator.
func buildGenerator(cfg types.GenerationConfig) (generate.TextGenerator, error) {
	keyName := secrets.OpenAIAPIKey
	if cfg.Provider == types.ProviderAnthropic {
		keyName = secrets.AnthropicAPIKey
	}
	cfg.APIKey = loadedSecrets.Resolve(cfg.APIKey, keyName)
	return generate.New(cfg)
}

// buildSources returns the collector and fetcher for mode. The returned
// close function releases backend resources and is never nil.
func buildSources(cfg types.AssistantConfig, mode types.SourceMode) (collect.Collector, fetch.Fetcher, func() error, error) {
	noop := func() error { return nil }

	switch mode {
	case types.ModeWeb, "":
		var backend collect.SearchBackend
		switch cfg.Search.Backend {
		case types.SearchDuckDuckGo, "":
			backend = collect.NewDuckDuckGo(cfg.Search.HTTPConfig)
		case types.SearchSerper:
			key := loadedSecrets.Resolve(cfg.Search.APIKey, secrets.SerperAPIKey)
			if key == "" {
				return nil, nil, noop, fmt.Errorf("serper search requires an API key (.secrets/%s)", secrets.SerperAPIKey)
			}
			backend = collect.NewSerper(key, cfg.Search.HTTPConfig)
		default:
			return nil, nil, noop, fmt.Errorf("unsupported search backend %q: use duckduckgo or serper", cfg.Search.Backend)
		}
		c := &collect.WebCollector{Backend: backend, Limit: cfg.Research.SourcesPerQuery}
		return c, fetch.Dispatch{Web: fetch.NewWeb(cfg.Fetch)}, noop, nil

	case types.ModeArxiv:
		c := &collect.DocumentCollector{Retriever: collect.NewArxiv(cfg.Search)}
		return c, fetch.Dispatch{}, noop, nil

	case types.ModeSemanticScholar:
		sc := cfg.Search
		sc.SemanticScholarAPIKey = loadedSecrets.Resolve(sc.SemanticScholarAPIKey, secrets.SemanticScholarAPIKey)
		return &collect.DocumentCollector{Retriever: collect.NewSemanticScholar(sc)}, fetch.Dispatch{}, noop, nil

	case types.ModeOpenAlex:
		sc := cfg.Search
		sc.OpenAlexEmail = loadedSecrets.Resolve(sc.OpenAlexEmail, secrets.OpenAlexEmail)
		return &collect.DocumentCollector{Retriever: collect.NewOpenAlex(sc)}, fetch.Dispatch{}, noop, nil

	case types.ModeCorpus:
		store, err := corpus.NewStore(cfg.Corpus)
		if err != nil {
			return nil, nil, noop, err
		}
		return &collect.DocumentCollector{Retriever: store}, fetch.Dispatch{}, store.Close, nil
	}
	return nil, nil, noop, fmt.Errorf("unsupported source %q: use web, arxiv, semantic-scholar, openalex, or corpus", mode)
}

// buildPipeline assembles the full research pipeline for mode.
func buildPipeline(cfg types.AssistantConfig, mode types.SourceMode, m *metrics.Recorder) (*research.Pipeline, func() error, error) {
	gen, err := buildGenerator(cfg.Generation)
	if err != nil {
		return nil, nil, err
	}
	collector, fetcher, closeFn, err := buildSources(cfg, mode)
	if err != nil {
		return nil, nil, err
	}
	p := research.NewPipeline(cfg, research.Components{
		Generator: gen,
		Collector: collector,
		Fetcher:   fetcher,
		Logger:    logger.With(zapSource(mode)),
		Metrics:   m,
	})
	return p, closeFn, nil
}
