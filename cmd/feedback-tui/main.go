// Package main runs the customer feedback flow in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fpang/review-drafter/internal/cli"
	"github.com/fpang/review-drafter/internal/config"
	"github.com/fpang/review-drafter/internal/feedback"
	"github.com/fpang/review-drafter/internal/logging"
	"github.com/fpang/review-drafter/internal/tui"
)

// CLI flags
var (
	apiFlag     string
	localFlag   bool
	logFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "feedback-tui",
	Short: "Collect a customer rating and route it to a review or a complaint",
	Long: `Feedback TUI asks for a 1-5 star rating. Happy customers can post a
review directly or have one drafted for them; unhappy customers fill in a
private feedback form that goes to the business instead.

Drafts come from a running review-web server unless --local is set, in which
case the provider is called in process.

Examples:
  feedback-tui
  feedback-tui --api https://reviews.example.com
  feedback-tui --local --log-file /tmp/feedback.log`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().StringVar(&apiFlag, "api", "", "Base URL of the review API (overrides REVIEW_API_BASE_URL)")
	rootCmd.Flags().BoolVar(&localFlag, "local", false, "Call the text-generation provider in process")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Write logs to this file (default: discard)")
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
	if apiFlag != "" {
		cfg.APIBaseURL = apiFlag
	}

	var logOut io.Writer = io.Discard
	if logFileFlag != "" {
		f, err := os.OpenFile(logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.InitWriter(cfg.LogLevel, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var drafter feedback.Drafter
	if localFlag {
		gen := cli.InitGenerator(ctx, cfg, false)
		drafter = feedback.ServiceDrafter{Service: cli.NewDraftService(gen, cfg)}
	} else {
		drafter = feedback.NewHTTPDrafter(cfg.APIBaseURL, cfg.ProviderTimeout+30*time.Second)
	}

	bridge := &tui.Bridge{}
	ctrl := cli.NewController(cfg, drafter, bridge.OnChange)

	p := tea.NewProgram(tui.NewModel(ctx, ctrl, tui.Options{}), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("feedback TUI failed: %w", err)
	}
	return nil
}
