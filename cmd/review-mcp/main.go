// Package main serves the review-drafting tool over the Model Context
// Protocol on stdin/stdout.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/review-drafter/internal/cli"
	"github.com/fpang/review-drafter/internal/config"
	"github.com/fpang/review-drafter/internal/logging"
	"github.com/fpang/review-drafter/internal/mcptool"
)

// Build-time version identity, injected via -ldflags.
var commitHash = "dev"

var modelFlag string

var rootCmd = &cobra.Command{
	Use:   "review-mcp",
	Short: "MCP server exposing the draft_review tool",
	Long: `Review MCP speaks the Model Context Protocol over stdio so an assistant
can draft reviews with the same prompt and provider as the HTTP API.
Logs go to stderr; stdout carries protocol messages only.`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use (overrides REVIEW_MODEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	logging.InitWriter(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := cli.InitGenerator(ctx, cfg, false)
	server := mcptool.NewServer(cli.NewDraftService(gen, cfg), commitHash)

	log.Info().Str("provider", gen.Name()).Str("tool", mcptool.ToolName).Msg("MCP server starting on stdio")
	return mcptool.Serve(ctx, server)
}
