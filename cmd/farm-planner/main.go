package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"farm-planner/internal/app"
	"farm-planner/internal/config"
	"farm-planner/internal/logging"
	"farm-planner/internal/report"
)

var (
	// Global flags
	verbose bool
	plain   bool
	timeout time.Duration

	cfg     *config.Config
	logger  *zap.Logger
	rt      *app.Runtime
	// application is the App the commands run against. Tests set it directly.
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "farm-planner",
	Short: "Harvest records, budgets and planting plans for a farm",
	Long: `farm-planner records harvests and budgets, analyses profitability per
month and crop, and drafts planting requirements with a language model for a
reviewer to verify before a final plan is approved.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if application != nil {
			return nil
		}
		var err error
		cfg, err = config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.LogFormat)
		if err != nil {
			return err
		}
		rt, err = app.Bootstrap(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		application = rt.App
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt != nil {
			if err := rt.Close(); err != nil {
				logger.Warn("failed to close resources", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Print raw markdown instead of rendering it")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Operation timeout")

	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(profitCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// printMarkdown writes md to the command output, rendered for the terminal
// unless --plain is set.
func printMarkdown(cmd *cobra.Command, md string) error {
	out := md
	if !plain {
		rendered, err := report.Render(md, 100)
		if err != nil {
			return err
		}
		out = rendered
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
