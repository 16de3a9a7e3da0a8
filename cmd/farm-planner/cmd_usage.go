package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"farm-planner/internal/report"
)

var (
	usageDays   int
	cleanupDays int
	tokenTTL    time.Duration
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show draft generation usage, or clean up old records",
	Args:  cobra.NoArgs,
	RunE:  showUsage,
}

var tokenCmd = &cobra.Command{
	Use:   "token <approver>",
	Short: "Issue an approver token for final plan decisions",
	Args:  cobra.ExactArgs(1),
	RunE:  issueToken,
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 7, "Show the last N days")
	usageCmd.Flags().IntVar(&cleanupDays, "cleanup", 0, "Remove records older than N days instead")

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}

func showUsage(cmd *cobra.Command, args []string) error {
	if rt == nil {
		return errors.New("usage metrics are not available")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if cleanupDays > 0 {
		removed, err := rt.Metrics.Cleanup(ctx, cleanupDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d old metric records.\n", removed)
		return nil
	}

	usage, err := rt.Metrics.GetDailyUsage(ctx, usageDays)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, "# Draft generation usage\n\n"+report.UsageTable(usage))
}

func issueToken(cmd *cobra.Command, args []string) error {
	if rt == nil {
		return errors.New("approver tokens are not available")
	}
	token, err := rt.Approvers.Issue(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
