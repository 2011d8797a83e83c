// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/adrservice"
	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/watch"
)

// bootstrap builds the analysis service and its dependencies from options.
// The returned cleanup closes the index database.
func bootstrap(opts ...Option) (*adrservice.Service, *Config, *slog.Logger, func(), error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("corpus_path", cfg.Corpus.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	set, err := cfg.Rules.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load rules: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	svc := adrservice.New(store, db, set, cfg.Risk.Scoring(), logger)
	return svc, cfg, logger, func() { db.Close() }, nil
}

// RunAnalyze performs a one-shot analysis and writes the JSON report and
// DOT export to the configured output paths. Detected issues are reported,
// not fatal: the run fails only on unrecoverable errors such as an
// unreadable corpus directory.
func RunAnalyze(ctx context.Context, opts ...Option) error {
	svc, cfg, logger, cleanup, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(cfg.Output.ReportPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	dot, err := svc.DOT(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output.DOTPath, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("write dot export: %w", err)
	}

	logger.Info("Report written",
		slog.String("report", cfg.Output.ReportPath),
		slog.String("dot", cfg.Output.DOTPath),
		slog.Int("total_adrs", rep.Summary.TotalADRs),
		slog.Int("cycles", rep.Summary.Cycles),
		slog.Int("config_issues", rep.Summary.ConfigIssues),
		slog.Int("high_risk_adrs", rep.Summary.HighRiskADRs))
	return nil
}

// RunExport analyses the corpus and prints the DOT export to stdout.
func RunExport(ctx context.Context, opts ...Option) error {
	svc, _, _, cleanup, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	dot, err := svc.DOT(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Print(dot)
	return err
}

// RunFix analyses the corpus and plans corrective edits for version
// mismatches. With apply=false the plan is printed as JSON and nothing is
// written; with apply=true each fix is verified and applied.
func RunFix(ctx context.Context, apply bool, opts ...Option) error {
	svc, _, logger, cleanup, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	fixes, err := svc.PlanFixes(ctx)
	if err != nil {
		return err
	}
	if len(fixes) == 0 {
		logger.Info("No fixable issues found")
		return nil
	}

	if !apply {
		data, err := json.MarshalIndent(fixes, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		logger.Info("Dry run complete; re-run with --apply to write fixes",
			slog.Int("planned", len(fixes)))
		return nil
	}

	results, err := svc.ApplyFixes(ctx, fixes)
	if err != nil {
		return err
	}
	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	logger.Info("Fixes applied", slog.Int("applied", applied), slog.Int("failed", len(results)-applied))
	return nil
}

// RunMCP runs an initial analysis and serves the MCP tools on stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	svc, _, logger, cleanup, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial analysis failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(svc).ServeStdio()
}

// RunServe starts the HTTP API with the corpus watcher and SSE updates.
func RunServe(ctx context.Context, opts ...Option) error {
	svc, cfg, logger, cleanup, err := bootstrap(opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial analysis failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Corpus watcher with SSE callback.
	g.Go(func() error {
		return watch.Run(gCtx, svc, cfg.Corpus.Path, 300*time.Millisecond, logger, func(kind, path string) {
			broker.PublishDocEvent(kind, path)
		})
	})

	// HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shutdown handling.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
