// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the web and document research pipelines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/plan"
	"github.com/pdiddy/research-assistant/internal/research"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Runner is the part of a research pipeline the server drives.
type Runner interface {
	Run(ctx context.Context, question string) (types.Report, error)
	Research(ctx context.Context, question string) (types.AggregatedResearch, error)
}

// Options configures the HTTP shim. A nil pipeline leaves its routes
// unregistered.
type Options struct {
	Web      Runner
	Document Runner
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

// QuestionRequest is the request body for every pipeline route.
type QuestionRequest struct {
	Question string `json:"question"`
}

// ReportResponse is returned by the report routes.
type ReportResponse struct {
	Report  string   `json:"report"`
	Queries []string `json:"queries"`
	Sources []string `json:"sources"`
}

// ResearchResponse is returned by the research-only routes.
type ResearchResponse struct {
	Queries  []string `json:"queries"`
	Research string   `json:"research"`
	Sources  []string `json:"sources"`
}

// New builds the echo instance with all routes registered.
func New(opts Options) *echo.Echo {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Warn("request failed",
			zap.Int("status", code), zap.String("method", req.Method),
			zap.String("path", req.URL.Path), zap.Error(err))
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusTemporaryRedirect, "/healthz") })
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	g := e.Group("/research-assistant")
	if opts.Web != nil {
		g.POST("/web", reportHandler(opts.Web))
		g.POST("/web/research", researchHandler(opts.Web))
	}
	if opts.Document != nil {
		g.POST("/doc", reportHandler(opts.Document))
		g.POST("/doc/research", researchHandler(opts.Document))
	}
	return e
}

func bindQuestion(c echo.Context) (string, error) {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	return q, nil
}

func reportHandler(r Runner) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := bindQuestion(c)
		if err != nil {
			return err
		}
		rep, err := r.Run(c.Request().Context(), q)
		if err != nil {
			return pipelineError(err)
		}
		return c.JSON(http.StatusOK, ReportResponse{Report: rep.Text, Queries: rep.Queries, Sources: rep.Sources})
	}
}

func researchHandler(r Runner) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := bindQuestion(c)
		if err != nil {
			return err
		}
		res, err := r.Research(c.Request().Context(), q)
		if err != nil {
			return pipelineError(err)
		}
		return c.JSON(http.StatusOK, ResearchResponse{Queries: res.Queries, Research: res.Text(), Sources: res.Sources()})
	}
}

// pipelineError maps pipeline failures to HTTP errors. Unparseable planner
// output is a bad upstream response and an interrupted research stage is
// unavailable. Anything else is internal.
func pipelineError(err error) error {
	var pe *plan.PlanningError
	var se *research.StageError
	switch {
	case errors.As(err, &pe):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	case errors.As(err, &se) && se.Stage == research.StageResearch:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

// Serve runs the server on addr until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}
