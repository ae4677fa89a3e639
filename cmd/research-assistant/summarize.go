// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/fetch"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Fetch one URL and summarize it against a question",
	Long: `Summarize runs a single source through the fetch and summary stages and
prints the rendered summary. Unreachable pages print their failure text.`,
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	pageURL, _ := cmd.Flags().GetString("url")
	question, _ := cmd.Flags().GetString("question")
	if pageURL == "" || question == "" {
		return fmt.Errorf("--url and --question are required")
	}

	cfg := configFromFlags(cmd)
	gen, err := buildGenerator(cfg.Generation)
	if err != nil {
		return err
	}

	ctx := context.Background()
	loc := types.SourceLocator{Kind: types.SourceWeb, URL: pageURL}
	content, err := fetch.NewWeb(cfg.Fetch).Fetch(ctx, loc)
	if err != nil {
		content = types.UnavailableContent(loc, fetch.FailureText(err.Error()))
	}

	s := summarize.New(gen, cfg.Research, logger.Named("summarize"))
	fmt.Println(s.Summarize(ctx, question, content).Render())
	return nil
}

func init() {
	addGenerationFlags(summarizeCmd)
	summarizeCmd.Flags().String("url", "", "page to summarize")
	summarizeCmd.Flags().String("question", "", "question the summary should answer")

	rootCmd.AddCommand(summarizeCmd)
}
