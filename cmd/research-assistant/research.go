// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [question]",
	Short: "Research a question and print a markdown report",
	Long: `Research plans search queries for the question, collects and summarizes
sources for every query in parallel, and writes a long-form report.

Use --source to choose web search (default) or a document backend (arxiv,
semantic-scholar, openalex, corpus). Use --json to print the queries and
sources with the report, and --no-report to stop after the summaries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

// researchOutput is the --json document.
type researchOutput struct {
	Question string            `json:"question"`
	Queries  []string          `json:"queries"`
	Groups   [][]types.Summary `json:"groups,omitempty"`
	Sources  []string          `json:"sources"`
	Report   string            `json:"report,omitempty"`
}

func runResearch(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	cfg := configFromFlags(cmd)

	p, closeFn, err := buildPipeline(cfg, cfg.Search.Mode, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	researchOnly, _ := cmd.Flags().GetBool("no-report")

	if researchOnly {
		r, err := p.Research(ctx, question)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(researchOutput{Question: question, Queries: r.Queries, Groups: r.Groups, Sources: r.Sources()})
		}
		fmt.Println(r.Text())
		return nil
	}

	rep, err := p.Run(ctx, question)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(researchOutput{Question: question, Queries: rep.Queries, Sources: rep.Sources, Report: rep.Text})
	}

	fmt.Println(rep.Text)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Queries: %s\n", strings.Join(rep.Queries, "; "))
	fmt.Fprintf(os.Stderr, "Sources attempted: %d\n", len(rep.Sources))
	for _, s := range rep.Sources {
		fmt.Fprintf(os.Stderr, "  %s\n", s)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func zapSource(mode types.SourceMode) zap.Field {
	if mode == "" {
		mode = types.ModeWeb
	}
	return zap.String("source", string(mode))
}

func init() {
	addGenerationFlags(researchCmd)
	addResearchFlags(researchCmd)
	researchCmd.Flags().Bool("json", false, "print queries, sources, and report as JSON")
	researchCmd.Flags().Bool("no-report", false, "stop after research and print the joined summaries")

	rootCmd.AddCommand(researchCmd)
}
