package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"farm-planner/internal/analytics"
	"farm-planner/internal/budget"
)

// SummaryMarkdown renders harvest statistics with per-crop and per-month
// breakdowns. Months are listed chronologically.
func SummaryMarkdown(title string, s analytics.Summary, byCrop, byMonth analytics.Groups) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if s.Count == 0 {
		sb.WriteString("No harvest data matches the filter.\n")
		return sb.String()
	}

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Harvests | %d |\n", s.Count)
	fmt.Fprintf(&sb, "| Total quantity | %s |\n", Number(s.TotalQuantity))
	fmt.Fprintf(&sb, "| Total revenue | %s |\n", Rupiah(s.TotalRevenue))
	fmt.Fprintf(&sb, "| Total cost | %s |\n", Rupiah(s.TotalCost))
	fmt.Fprintf(&sb, "| Average price | %s |\n", Rupiah(s.AveragePrice))
	fmt.Fprintf(&sb, "| Productivity per hectare | %s |\n", Number(s.ProductivityPerHectare))
	fmt.Fprintf(&sb, "| Lands | %d |\n", s.DistinctLands)
	fmt.Fprintf(&sb, "| Most frequent crop | %s |\n", s.MostFrequentCrop)
	fmt.Fprintf(&sb, "| Average quality | %s |\n", s.AverageQuality)

	writeGroups(&sb, "By crop", "Crop", byCrop)
	writeGroups(&sb, "By month", "Month", byMonth.Sorted())
	return sb.String()
}

func writeGroups(sb *strings.Builder, heading, keyTitle string, groups analytics.Groups) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n| %s | Harvests | Quantity | Revenue |\n|---|---|---|---|\n", heading, keyTitle)
	for _, g := range groups {
		key := g.Key
		if keyTitle == "Month" {
			key = PeriodLabel(key)
		}
		fmt.Fprintf(sb, "| %s | %d | %s | %s |\n", key, g.Count, Number(g.TotalQuantity), Rupiah(g.TotalRevenue))
	}
}

// ProfitLossMarkdown renders a profitability analysis for one period and crop.
func ProfitLossMarkdown(period, cropType string, pl analytics.ProfitLoss) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Profit and loss: %s, %s\n\n", cropType, PeriodLabel(period))
	if pl.BudgetName != "" {
		fmt.Fprintf(&sb, "Budget: %s\n\n", pl.BudgetName)
	} else {
		sb.WriteString("No budget plan found for this crop; planned budget is 0.\n\n")
	}

	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Revenue | %s |\n", Rupiah(pl.TotalRevenue))
	fmt.Fprintf(&sb, "| Planned budget | %s |\n", Rupiah(pl.PlannedBudget))
	fmt.Fprintf(&sb, "| Actual cost | %s |\n", Rupiah(pl.ActualCost))
	fmt.Fprintf(&sb, "| Budget variance | %s |\n", Rupiah(pl.BudgetVariance))
	fmt.Fprintf(&sb, "| Gross profit | %s |\n", Rupiah(pl.GrossProfit))
	fmt.Fprintf(&sb, "| Net profit | %s |\n", Rupiah(pl.NetProfit))
	fmt.Fprintf(&sb, "| Profit margin | %s (%s) |\n", Percent(pl.ProfitMargin), analytics.Classify(pl.ProfitMargin, analytics.Margin))
	fmt.Fprintf(&sb, "| ROI | %s (%s) |\n", Percent(pl.ROI), analytics.Classify(pl.ROI, analytics.ROI))

	sb.WriteString("\n## Per hectare\n\n| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Land area | %s ha |\n", Number(pl.TotalLandArea))
	fmt.Fprintf(&sb, "| Productivity | %s |\n", Number(pl.ProductivityPerHectare))
	fmt.Fprintf(&sb, "| Revenue | %s |\n", Rupiah(pl.RevenuePerHectare))
	fmt.Fprintf(&sb, "| Cost | %s |\n", Rupiah(pl.CostPerHectare))
	fmt.Fprintf(&sb, "| Average price | %s |\n", Rupiah(pl.AveragePrice))
	return sb.String()
}

// BudgetMarkdown renders a budget plan with its items and category totals.
func BudgetMarkdown(p *budget.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s, %s ha\n\n", p.Name, p.CropType, Number(p.LandArea))
	if len(p.Items) == 0 {
		sb.WriteString("No items yet.\n")
		return sb.String()
	}
	sb.WriteString("| ID | Category | Item | Quantity | Unit price | Total |\n|---|---|---|---|---|---|\n")
	for _, item := range p.Items {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s %s | %s | %s |\n",
			item.ID, item.Category, item.Name, Number(item.Quantity), item.Unit, Rupiah(item.UnitPrice), Rupiah(item.TotalPrice))
	}
	sb.WriteString("\n| Category | Total |\n|---|---|\n")
	for _, ct := range p.CategoryTotals() {
		fmt.Fprintf(&sb, "| %s | %s |\n", ct.Category, Rupiah(ct.Total))
	}
	fmt.Fprintf(&sb, "\n**Total budget: %s**\n", Rupiah(p.TotalBudget))
	return sb.String()
}

// Render formats markdown for the terminal.
func Render(markdown string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
