// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// envKeys are the settings that RESEARCH_ASSISTANT_* environment variables
// may override (e.g. RESEARCH_ASSISTANT_GENERATION_MODEL).
var envKeys = []string{
	"generation.provider",
	"generation.model",
	"generation.api_key",
	"generation.base_url",
	"search.mode",
	"search.backend",
	"search.api_key",
	"corpus.dir",
	"server.addr",
}

// loadConfig merges the config file read by viper over the defaults, then
// applies environment overrides.
func loadConfig() (types.AssistantConfig, error) {
	cfg := types.DefaultConfig()
	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if cfg, err = types.ParseConfig(data); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, key := range envKeys {
		_ = viper.BindEnv(key)
		v := viper.GetString(key)
		if v == "" {
			continue
		}
		switch key {
		case "generation.provider":
			cfg.Generation.Provider = types.GeneratorProvider(v)
		case "generation.model":
			cfg.Generation.Model = v
		case "generation.api_key":
			cfg.Generation.APIKey = v
		case "generation.base_url":
			cfg.Generation.BaseURL = v
		case "search.mode":
			cfg.Search.Mode = types.SourceMode(v)
		case "search.backend":
			cfg.Search.Backend = types.SearchBackendName(v)
		case "search.api_key":
			cfg.Search.APIKey = v
		case "corpus.dir":
			cfg.Corpus.Dir = v
		case "server.addr":
			cfg.Server.Addr = v
		}
	}
	return cfg, nil
}
