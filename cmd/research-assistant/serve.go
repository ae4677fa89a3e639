// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/server"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web and document pipelines over HTTP",
	Long: `Serve starts an HTTP server with:

  POST /research-assistant/web            web research report
  POST /research-assistant/web/research   web research summaries only
  POST /research-assistant/doc            document research report
  POST /research-assistant/doc/research   document research summaries only
  GET  /healthz
  GET  /metrics

Request bodies are {"question": "..."}.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFromFlags(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	docSource, _ := cmd.Flags().GetString("doc-source")

	m := metrics.New()

	web, closeWeb, err := buildPipeline(cfg, types.ModeWeb, m)
	if err != nil {
		return err
	}
	defer closeWeb()

	doc, closeDoc, err := buildPipeline(cfg, types.SourceMode(docSource), m)
	if err != nil {
		return err
	}
	defer closeDoc()

	e := server.New(server.Options{Web: web, Document: doc, Metrics: m, Logger: logger.Named("http")})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", zap.String("addr", cfg.Server.Addr), zap.String("doc_source", docSource))
	return server.Serve(ctx, e, cfg.Server.Addr)
}

func init() {
	addGenerationFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().String("doc-source", string(types.ModeArxiv), "document backend for /doc routes: arxiv, semantic-scholar, openalex, or corpus")

	rootCmd.AddCommand(serveCmd)
}
