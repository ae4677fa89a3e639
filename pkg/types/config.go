// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means calls may block
	// until the context is cancelled.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RateLimitRetries is the number of times an HTTP 429 is retried. Zero
	// sends each request exactly once.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries"`
}

// ResearchConfig holds the fan-out shape of a research run.
type ResearchConfig struct {
	// Queries is the number of search queries planned per question (default 3).
	Queries int `json:"queries" yaml:"queries"`

	// SourcesPerQuery caps the web locators collected per query (default 3).
	SourcesPerQuery int `json:"sources_per_query" yaml:"sources_per_query"`

	// MaxContentChars bounds the source text placed in a summary prompt (default 10000).
	MaxContentChars int `json:"max_content_chars" yaml:"max_content_chars"`

	// Concurrency bounds the number of in-flight sources (default 8).
	// One runs the fan-out sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// GeneratorProvider identifies the text-generation service.
type GeneratorProvider string

const (
	ProviderOpenAI    GeneratorProvider = "openai"
	ProviderAnthropic GeneratorProvider = "anthropic"
)

// GenerationConfig holds settings for stages that call a text-generation API.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: openai or anthropic.
	Provider GeneratorProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint, for proxies and compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens caps the completion length. Zero uses the provider default,
	// except for anthropic which requires a value (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// PlannerTemperature is the determinism knob for query planning (default 0).
	PlannerTemperature float64 `json:"planner_temperature" yaml:"planner_temperature"`
}

// SourceMode selects which pipeline variant collects sources.
type SourceMode string

const (
	ModeWeb             SourceMode = "web"
	ModeArxiv           SourceMode = "arxiv"
	ModeSemanticScholar SourceMode = "semantic-scholar"
	ModeOpenAlex        SourceMode = "openalex"
	ModeCorpus          SourceMode = "corpus"
)

// SearchBackendName selects the web search backend.
type SearchBackendName string

const (
	SearchDuckDuckGo SearchBackendName = "duckduckgo"
	SearchSerper     SearchBackendName = "serper"
)

// SearchConfig holds settings for source collection.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mode selects web search or a document retrieval backend.
	Mode SourceMode `json:"mode" yaml:"mode"`

	// Backend selects the web search engine (default duckduckgo).
	Backend SearchBackendName `json:"backend" yaml:"backend"`

	// APIKey authenticates against keyed search backends (serper).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxDocuments is the number of documents requested from the arXiv,
	// Semantic Scholar, and OpenAlex backends (default 3).
	MaxDocuments int `json:"max_documents" yaml:"max_documents"`

	// SemanticScholarAPIKey raises the Semantic Scholar rate limit. Optional.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail is sent as mailto for OpenAlex polite-pool access. Optional.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`
}

// FetchConfig holds settings for downloading web sources.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxBodyBytes bounds the bytes read from a response body (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// CorpusConfig holds settings for the local document corpus.
type CorpusConfig struct {
	// Dir is the directory holding the corpus database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the number of documents returned per retrieval (default 3).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP shim.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`
}

// AssistantConfig groups all stage configurations.
type AssistantConfig struct {
	Research   ResearchConfig   `json:"research" yaml:"research"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

const defaultUserAgent = "research-assistant/0.1"

// DefaultConfig returns the configuration used when no file or flag overrides a value.
func DefaultConfig() AssistantConfig {
	return AssistantConfig{
		Research: ResearchConfig{
			Queries:         3,
			SourcesPerQuery: 3,
			MaxContentChars: 10000,
			Concurrency:     8,
		},
		Generation: GenerationConfig{
			HTTPConfig: HTTPConfig{Timeout: 120 * time.Second, UserAgent: defaultUserAgent},
			Provider:   ProviderOpenAI,
			Model:      "gpt-4o-mini",
			MaxTokens:  4096,
		},
		Search: SearchConfig{
			HTTPConfig:   HTTPConfig{Timeout: 15 * time.Second, UserAgent: defaultUserAgent},
			Mode:         ModeWeb,
			Backend:      SearchDuckDuckGo,
			MaxDocuments: 3,
		},
		Fetch: FetchConfig{
			HTTPConfig:   HTTPConfig{Timeout: 15 * time.Second, UserAgent: defaultUserAgent},
			MaxBodyBytes: 4 << 20,
		},
		Corpus: CorpusConfig{
			Dir:        "corpus",
			MaxResults: 3,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
	}
}

// ParseConfig decodes a YAML configuration over DefaultConfig, so omitted
// keys keep their defaults. Durations use Go syntax ("15s", "2m").
func ParseConfig(data []byte) (AssistantConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AssistantConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
