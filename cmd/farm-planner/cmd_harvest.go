package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farm-planner/internal/analytics"
	"farm-planner/internal/harvest"
	"farm-planner/internal/report"
)

var (
	harvestIn harvest.Input
	filter    analytics.Criteria
	quality   string
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Record and list harvests",
}

var harvestAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a harvest",
	Args:  cobra.NoArgs,
	RunE:  addHarvest,
}

var harvestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List harvests, optionally filtered",
	Args:  cobra.NoArgs,
	RunE:  listHarvests,
}

var harvestDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a harvest",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteHarvest,
}

func init() {
	f := harvestAddCmd.Flags()
	f.StringVar(&harvestIn.LandName, "land", "", "Land name (required)")
	f.StringVar(&harvestIn.CropType, "crop", "", "Crop type (required)")
	f.StringVar(&harvestIn.Variety, "variety", "", "Variety")
	f.Float64Var(&harvestIn.LandArea, "area", 0, "Land area in hectares")
	f.StringVar(&harvestIn.PlantingDate, "planted", "", "Planting date (YYYY-MM-DD)")
	f.StringVar(&harvestIn.HarvestDate, "date", "", "Harvest date (YYYY-MM-DD, required)")
	f.Float64Var(&harvestIn.Quantity, "quantity", 0, "Harvest quantity (required)")
	f.StringVar(&harvestIn.Unit, "unit", "kg", "Quantity unit")
	f.StringVar(&quality, "quality", "", "Quality grade: very-good, good, medium or poor")
	f.Float64Var(&harvestIn.UnitPrice, "price", 0, "Unit price")
	f.Float64Var(&harvestIn.HarvestCost, "cost", 0, "Harvest cost")
	f.StringVar(&harvestIn.Weather, "weather", "", "Weather during harvest")
	f.StringVar(&harvestIn.PlantCondition, "condition", "", "Plant condition")
	f.StringVar(&harvestIn.HarvestMethod, "method", "", "Harvest method")
	f.StringVar(&harvestIn.Notes, "notes", "", "Notes")

	addFilterFlags(harvestListCmd)

	harvestCmd.AddCommand(harvestAddCmd)
	harvestCmd.AddCommand(harvestListCmd)
	harvestCmd.AddCommand(harvestDeleteCmd)
}

// addFilterFlags binds the statistics filter to cmd.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&filter.CropType, "crop", "", "Only this crop type")
	f.IntVar(&filter.Year, "year", 0, "Only this harvest year")
	f.StringVar(&filter.Period, "period", "", "Only this month (YYYY-MM)")
	f.StringVar(&quality, "quality", "", "Only this quality grade")
}

func criteria() analytics.Criteria {
	c := filter
	c.Quality = harvest.Quality(quality)
	return c
}

func addHarvest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	in := harvestIn
	in.Quality = harvest.Quality(quality)
	rec, err := application.RecordHarvest(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded harvest %s: %s\n", rec.ID, report.Rupiah(rec.TotalSaleAmount))
	return nil
}

func listHarvests(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	records, err := application.Harvests(ctx, criteria())
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.HarvestTable(records))
}

func deleteHarvest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := application.DeleteHarvest(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted harvest %s\n", args[0])
	return nil
}
