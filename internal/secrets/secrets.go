// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys for the generation and search backends.
// Keys come from a directory of plain-text files (filename is the key name,
// trimmed contents the value) with the provider's conventional environment
// variable as fallback.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key file names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	OpenAIAPIKey    = "openai-api-key"
	SerperAPIKey    = "serper-api-key"

	SemanticScholarAPIKey = "semantic-scholar-api-key"
	OpenAlexEmail         = "openalex-email"
)

// envFallback maps key names to the environment variables consulted when no
// key file exists.
var envFallback = map[string]string{
	AnthropicAPIKey: "ANTHROPIC_API_KEY",
	OpenAIAPIKey:    "OPENAI_API_KEY",
	SerperAPIKey:    "SERPER_API_KEY",
}

// Secrets holds the key files read from one directory.
type Secrets struct {
	values map[string]string
	getenv func(string) string
}

// Load reads every file in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (*Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Secrets{values: make(map[string]string), getenv: os.Getenv}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s.values[name] = value
		}
	}
	return s, nil
}

// Get returns the named key from the directory, falling back to its
// environment variable.
func (s *Secrets) Get(name string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.values[name]; ok {
		return v
	}
	if env, ok := envFallback[name]; ok && s.getenv != nil {
		return strings.TrimSpace(s.getenv(env))
	}
	return ""
}

// Resolve returns the first non-empty of explicit (a flag or config value)
// and the stored key.
func (s *Secrets) Resolve(explicit, name string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return s.Get(name)
}

// Names lists the key names read from the directory.
func (s *Secrets) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	return names
}
