package report

import (
	"fmt"
	"strings"

	"farm-planner/internal/budget"
	"farm-planner/internal/draft"
	"farm-planner/internal/harvest"
	"farm-planner/internal/metrics"
	"farm-planner/internal/plan"
)

// HarvestTable lists harvest records, one row each.
func HarvestTable(records []harvest.Record) string {
	if len(records) == 0 {
		return "No harvests recorded.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Date | Land | Crop | Quantity | Quality | Sale | Cost |\n|---|---|---|---|---|---|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s %s | %s | %s | %s |\n",
			r.ID, r.HarvestDate, r.LandName, r.CropType, Number(r.Quantity), r.Unit,
			r.Quality, Rupiah(r.TotalSaleAmount), Rupiah(r.HarvestCost))
	}
	return sb.String()
}

// BudgetTable lists budget plans without their items.
func BudgetTable(plans []budget.Plan) string {
	if len(plans) == 0 {
		return "No budget plans.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Name | Crop | Area | Items | Total |\n|---|---|---|---|---|---|\n")
	for _, p := range plans {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s ha | %d | %s |\n",
			p.ID, p.Name, p.CropType, Number(p.LandArea), len(p.Items), Rupiah(p.TotalBudget))
	}
	return sb.String()
}

// DraftTable lists drafts with their review state.
func DraftTable(drafts []draft.Draft) string {
	if len(drafts) == 0 {
		return "No drafts.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Crop | Area | Model | Status | Created |\n|---|---|---|---|---|---|\n")
	for _, d := range drafts {
		fmt.Fprintf(&sb, "| %s | %s | %s ha | %s | %s | %s |\n",
			d.ID, d.CropType, Number(d.LandArea), d.Model, d.CurrentStatus(), d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return sb.String()
}

// DraftMarkdown shows one draft with the text a final plan would use.
func DraftMarkdown(d draft.Draft) string {
	return fmt.Sprintf("# Draft %s\n\n%s, %s ha, %s\n\n---\n\n%s\n", d.ID, d.CropType, Number(d.LandArea), d.CurrentStatus(), d.Text())
}

// PlantingTable lists planting plans.
func PlantingTable(plans []plan.PlantingPlan) string {
	if len(plans) == 0 {
		return "No planting plans.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Name | Crop | Area | Planting date | Estimated cost |\n|---|---|---|---|---|---|\n")
	for _, p := range plans {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s ha | %s | %s |\n",
			p.ID, p.Name, p.CropType, Number(p.RequiredLandArea), p.PlannedPlantingDate, Rupiah(p.EstimatedCost))
	}
	return sb.String()
}

// FinalPlanTable lists final plans with their approval state.
func FinalPlanTable(plans []plan.FinalPlan) string {
	if len(plans) == 0 {
		return "No final plans.\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Name | Crop | Area | Status | Decided by |\n|---|---|---|---|---|---|\n")
	for _, p := range plans {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s ha | %s | %s |\n",
			p.ID, p.Name, p.CropType, Number(p.LandArea), p.Status, p.ApprovedBy)
	}
	return sb.String()
}

// UsageTable lists daily generation usage.
func UsageTable(usage []metrics.DailyUsage) string {
	if len(usage) == 0 {
		return "No usage recorded.\n"
	}
	var sb strings.Builder
	sb.WriteString("| Day | Prompt tokens | Completion tokens | Calls | Failed | Avg latency |\n|---|---|---|---|---|---|\n")
	for _, u := range usage {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d | %d ms |\n",
			u.Date, u.TotalPrompt, u.TotalCompletion, u.TotalExecution, u.Failures, u.AvgLatencyMS)
	}
	return sb.String()
}
