// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/corpus"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local document corpus (add, import, search)",
	Long: `Corpus manages a local SQLite database of documents with FTS5 indexing.
Research with --source corpus retrieves from it.`,
}

// --- add subcommand ---

var corpusAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one document to the corpus",
	RunE:  runCorpusAdd,
}

func runCorpusAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	bodyFile, _ := cmd.Flags().GetString("body-file")
	docURL, _ := cmd.Flags().GetString("url")
	if title == "" || bodyFile == "" {
		return fmt.Errorf("--title and --body-file are required")
	}
	body, err := os.ReadFile(bodyFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", bodyFile, err)
	}

	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Add(context.Background(), types.Document{Title: title, Body: string(body), URL: docURL})
	if err != nil {
		return err
	}
	fmt.Printf("added %s %s\n", id, title)
	return nil
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import documents from a YAML file",
	Long: `Import reads a YAML file with a top-level "documents" list, each entry
holding title, body, and an optional url. Re-importing the same documents is
a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed to import", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	docs, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(docs)
	}
	if len(docs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %s\n", "Rank", "Title", "Excerpt")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, d := range docs {
		title := d.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		excerpt := strings.Join(strings.Fields(d.Body), " ")
		if len(excerpt) > 50 {
			excerpt = excerpt[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %s\n", i+1, title, excerpt)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(docs))
	return nil
}

// --- shared helpers ---

func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	cfg := appConfig.Corpus
	if dir, _ := cmd.Flags().GetString("corpus-dir"); dir != "" {
		cfg.Dir = dir
	}
	return cfg
}

func init() {
	corpusCmd.PersistentFlags().String("corpus-dir", "", "directory holding corpus.db (default from config)")

	corpusAddCmd.Flags().String("title", "", "document title")
	corpusAddCmd.Flags().String("body-file", "", "file containing the document body")
	corpusAddCmd.Flags().String("url", "", "link to the document at its origin")

	corpusSearchCmd.Flags().Int("limit", 10, "maximum results")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusSearchCmd)

	rootCmd.AddCommand(corpusCmd)
}
