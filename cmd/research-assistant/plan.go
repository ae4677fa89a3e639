// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [question]",
	Short: "Print the search queries planned for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := configFromFlags(cmd)
	gen, err := buildGenerator(cfg.Generation)
	if err != nil {
		return err
	}

	p := plan.NewPlanner(gen, cfg.Research, cfg.Generation, logger.Named("plan"))
	queries, err := p.Plan(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(queries)
	}
	for i, q := range queries {
		fmt.Printf("%d. %s\n", i+1, q)
	}
	return nil
}

func init() {
	addGenerationFlags(planCmd)
	planCmd.Flags().Int("queries", 0, "number of search queries to plan (0 = config default)")
	planCmd.Flags().Bool("json", false, "print the queries as a JSON array")

	rootCmd.AddCommand(planCmd)
}
