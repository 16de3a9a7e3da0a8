package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"farm-planner/internal/analytics"
	"farm-planner/internal/budget"
	"farm-planner/internal/harvest"
)

// Sheet names of the exported workbook.
const (
	SheetHarvests = "Harvests"
	SheetByCrop   = "By Crop"
	SheetByMonth  = "By Month"
	SheetBudgets  = "Budgets"
)

// WriteWorkbook writes harvests, their crop and month aggregates and the
// budget items as an XLSX workbook.
func WriteWorkbook(w io.Writer, records []harvest.Record, plans []budget.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetHarvests); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetByCrop, SheetByMonth, SheetBudgets} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	harvestRows := [][]any{{
		"Harvest date", "Land", "Crop", "Variety", "Land area (ha)", "Quantity", "Unit",
		"Quality", "Unit price", "Total sale", "Harvest cost",
	}}
	for _, r := range records {
		harvestRows = append(harvestRows, []any{
			r.HarvestDate, r.LandName, r.CropType, r.Variety, r.LandArea, r.Quantity, r.Unit,
			string(r.Quality), r.UnitPrice, r.TotalSaleAmount, r.HarvestCost,
		})
	}
	if err := writeRows(f, SheetHarvests, harvestRows); err != nil {
		return err
	}

	if err := writeRows(f, SheetByCrop, groupRows("Crop", analytics.GroupByCrop(records))); err != nil {
		return err
	}
	if err := writeRows(f, SheetByMonth, groupRows("Month", analytics.GroupByMonth(records).Sorted())); err != nil {
		return err
	}

	budgetRows := [][]any{{"Budget", "Crop", "Category", "Item", "Quantity", "Unit", "Unit price", "Total"}}
	for _, p := range plans {
		for _, item := range p.Items {
			budgetRows = append(budgetRows, []any{
				p.Name, p.CropType, string(item.Category), item.Name, item.Quantity, item.Unit,
				item.UnitPrice, item.TotalPrice,
			})
		}
	}
	if err := writeRows(f, SheetBudgets, budgetRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func groupRows(keyTitle string, groups analytics.Groups) [][]any {
	rows := [][]any{{keyTitle, "Harvests", "Quantity", "Revenue"}}
	for _, g := range groups {
		rows = append(rows, []any{g.Key, g.Count, g.TotalQuantity, g.TotalRevenue})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
