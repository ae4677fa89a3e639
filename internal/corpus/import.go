// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ImportFile is the YAML layout accepted by Import.
type ImportFile struct {
	Documents []types.Document `yaml:"documents"`
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Added  int
	Failed int
}

// Total returns the number of documents processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Failed
}

// Import reads a YAML file of documents and adds each one. Invalid documents
// are reported on w and counted, and do not stop the import.
func (s *Store) Import(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var f ImportFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	var summary ImportSummary
	for i, doc := range f.Documents {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id, err := s.Add(ctx, doc)
		if err != nil {
			fmt.Fprintf(w, "failed  #%d: %v\n", i+1, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "added   %s %s\n", id, doc.Title)
		summary.Added++
	}

	fmt.Fprintf(w, "\nadded: %d, failed: %d\n", summary.Added, summary.Failed)
	return summary, nil
}
