// Package main runs the review-drafting API as a standalone HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/review-drafter/internal/api"
	"github.com/fpang/review-drafter/internal/cli"
	"github.com/fpang/review-drafter/internal/config"
	"github.com/fpang/review-drafter/internal/logging"
	"github.com/fpang/review-drafter/internal/metrics"
)

// Build-time version identity, injected via -ldflags.
var commitHash = "dev"

// CLI flags
var (
	portFlag     int
	modelFlag    string
	validateFlag bool
	metricsFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "review-web",
	Short: "HTTP API that drafts customer reviews with a hosted model",
	Long: `Review Web serves POST /api/generate-review, turning a customer's
service and highlights into a short review draft. Configuration comes from
REVIEW_* environment variables; flags override them.

Examples:
  review-web
  review-web --port 9090
  REVIEW_PROVIDER=xai review-web --model grok-4`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides REVIEW_PORT)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use (overrides REVIEW_MODEL)")
	rootCmd.Flags().BoolVar(&validateFlag, "validate-key", true, "Probe the provider API key at startup")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", true, "Expose Prometheus metrics on /metrics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	initStart := time.Now()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := cli.InitGenerator(ctx, cfg, validateFlag)
	svc := cli.NewDraftService(gen, cfg)

	opts := api.Options{Drafter: svc, AllowedOrigins: cfg.Origins()}
	if metricsFlag {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics.MustRegister(reg)
		opts.Gatherer = reg
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.NewStartupLogger("review-web").
		CommitHash(commitHash).
		Provider(gen.Name(), cfg.Model).
		Feature("metrics", metricsFlag).
		Feature("keyValidation", validateFlag).
		Config("business", cfg.BusinessName).
		Config("port", fmt.Sprint(cfg.Port)).
		InitDuration(time.Since(initStart)).
		Log()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
