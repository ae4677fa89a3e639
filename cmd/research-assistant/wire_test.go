// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/collect"
	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func emptySecrets(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("SERPER_API_KEY", "")
	s, err := secrets.Load(filepath.Join(t.TempDir(), "none"), nil)
	require.NoError(t, err)
	loadedSecrets = s
}

func TestBuildSources(t *testing.T) {
	emptySecrets(t)
	cfg := types.DefaultConfig()
	cfg.Corpus.Dir = t.TempDir()

	c, f, closeFn, err := buildSources(cfg, types.ModeWeb)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	wc, ok := c.(*collect.WebCollector)
	require.True(t, ok)
	assert.Equal(t, 3, wc.Limit)
	assert.Equal(t, "duckduckgo", wc.Backend.Name())
	assert.NotNil(t, f)

	c, _, closeFn, err = buildSources(cfg, types.ModeArxiv)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &collect.DocumentCollector{}, c)

	for _, mode := range []types.SourceMode{types.ModeSemanticScholar, types.ModeOpenAlex} {
		c, _, _, err = buildSources(cfg, mode)
		require.NoError(t, err, mode)
		assert.IsType(t, &collect.DocumentCollector{}, c)
	}

	c, _, closeFn, err = buildSources(cfg, types.ModeCorpus)
	require.NoError(t, err)
	assert.Equal(t, "corpus", c.(*collect.DocumentCollector).Retriever.Name())
	require.NoError(t, closeFn())

	_, _, _, err = buildSources(cfg, "gopher")
	assert.Error(t, err)
}

func TestBuildSourcesSerperNeedsKey(t *testing.T) {
	emptySecrets(t)
	cfg := types.DefaultConfig()
	cfg.Search.Backend = types.SearchSerper

	_, _, _, err := buildSources(cfg, types.ModeWeb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), secrets.SerperAPIKey)

	cfg.Search.APIKey = "serp-key"
	c, _, _, err := buildSources(cfg, types.ModeWeb)
	require.NoError(t, err)
	assert.Equal(t, "serper", c.(*collect.WebCollector).Backend.Name())
}

func TestBuildGeneratorResolvesKey(t *testing.T) {
	emptySecrets(t)
	_, err := buildGenerator(types.GenerationConfig{Provider: types.ProviderAnthropic})
	assert.Error(t, err)

	t.Setenv("ANTHROPIC_API_KEY", "ak-env")
	gen, err := buildGenerator(types.GenerationConfig{Provider: types.ProviderAnthropic})
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestConfigFromFlags(t *testing.T) {
	appConfig = types.DefaultConfig()
	cmd := &cobra.Command{Use: "test"}
	addGenerationFlags(cmd)
	addResearchFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--source", "arxiv", "--queries", "5", "--model", "gpt-4o"}))

	cfg := configFromFlags(cmd)
	assert.Equal(t, types.ModeArxiv, cfg.Search.Mode)
	assert.Equal(t, 5, cfg.Research.Queries)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 3, cfg.Research.SourcesPerQuery)
	assert.Equal(t, types.ModeWeb, appConfig.Search.Mode)
}
