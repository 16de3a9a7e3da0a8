package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farm-planner/internal/report"
)

var (
	profitPeriod string
	profitCrop   string
	exportPath   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show harvest statistics",
	Args:  cobra.NoArgs,
	RunE:  showStats,
}

var profitCmd = &cobra.Command{
	Use:   "profit",
	Short: "Analyse profit and loss for one month and crop",
	Args:  cobra.NoArgs,
	RunE:  showProfit,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export harvests and budgets as an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE:  exportWorkbook,
}

func init() {
	addFilterFlags(statsCmd)

	profitCmd.Flags().StringVar(&profitPeriod, "period", "", "Month to analyse (YYYY-MM, required)")
	profitCmd.Flags().StringVar(&profitCrop, "crop", "", "Crop type to analyse (required)")
	profitCmd.MarkFlagRequired("period")
	profitCmd.MarkFlagRequired("crop")

	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "farm-report.xlsx", "Output file")
}

func showStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	stats, err := application.Statistics(ctx, criteria())
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Harvest statistics (%d of %d records)", stats.Shown, stats.Total)
	return printMarkdown(cmd, report.SummaryMarkdown(title, stats.Summary, stats.ByCrop, stats.ByMonth))
}

func showProfit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	pl, err := application.ProfitLoss(ctx, profitPeriod, profitCrop)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.ProfitLossMarkdown(profitPeriod, profitCrop, pl))
}

func exportWorkbook(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportPath, err)
	}
	if err := application.ExportWorkbook(ctx, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportPath)
	return nil
}
