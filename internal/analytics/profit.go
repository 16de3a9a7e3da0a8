package analytics

import (
	"errors"
	"math"

	"farm-planner/internal/budget"
	"farm-planner/internal/harvest"
	"farm-planner/internal/money"
)

// ErrNoData is returned when there are no harvest records to analyse.
var ErrNoData = errors.New("no harvest data for the selected period and crop type")

// ProfitLoss compares harvest results with the planned budget.
type ProfitLoss struct {
	RecordCount   int     `json:"recordCount"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalLandArea float64 `json:"totalLandArea"`
	ActualCost    float64 `json:"actualCost"`
	PlannedBudget float64 `json:"plannedBudget"`
	BudgetName    string  `json:"budgetName,omitempty"`
	AveragePrice  float64 `json:"averagePrice"`
	// BudgetVariance is positive when spending exceeded the budget.
	BudgetVariance float64 `json:"budgetVariance"`
	GrossProfit    float64 `json:"grossProfit"`
	// NetProfit charges the larger of planned and actual cost.
	NetProfit              float64 `json:"netProfit"`
	ProfitMargin           float64 `json:"profitMargin"`
	ROI                    float64 `json:"roi"`
	ProductivityPerHectare float64 `json:"productivityPerHectare"`
	RevenuePerHectare      float64 `json:"revenuePerHectare"`
	CostPerHectare         float64 `json:"costPerHectare"`
}

// AnalyzeProfitLoss analyses records already narrowed to one period and crop
// type. plan may be nil, in which case the planned budget is 0.
func AnalyzeProfitLoss(records []harvest.Record, plan *budget.Plan) (ProfitLoss, error) {
	if len(records) == 0 {
		return ProfitLoss{}, ErrNoData
	}

	var revenues, quantities, areas, costs []float64
	for _, r := range records {
		revenues = append(revenues, r.TotalSaleAmount)
		quantities = append(quantities, r.Quantity)
		areas = append(areas, r.LandArea)
		costs = append(costs, r.HarvestCost)
	}

	pl := ProfitLoss{
		RecordCount:   len(records),
		TotalRevenue:  money.Sum(revenues...),
		TotalQuantity: money.Sum(quantities...),
		TotalLandArea: money.Sum(areas...),
		ActualCost:    money.Sum(costs...),
	}
	if plan != nil {
		pl.PlannedBudget = plan.TotalBudget
		pl.BudgetName = plan.Name
	}

	pl.AveragePrice = ratio(pl.TotalRevenue, pl.TotalQuantity)
	pl.BudgetVariance = pl.ActualCost - pl.PlannedBudget
	pl.GrossProfit = pl.TotalRevenue - pl.ActualCost
	pl.NetProfit = pl.TotalRevenue - math.Max(pl.PlannedBudget, pl.ActualCost)
	pl.ProfitMargin = ratio(pl.NetProfit, pl.TotalRevenue) * 100
	pl.ROI = ratio(pl.NetProfit, pl.PlannedBudget) * 100
	pl.ProductivityPerHectare = ratio(pl.TotalQuantity, pl.TotalLandArea)
	pl.RevenuePerHectare = ratio(pl.TotalRevenue, pl.TotalLandArea)
	pl.CostPerHectare = ratio(pl.ActualCost, pl.TotalLandArea)
	return pl, nil
}

// Kind selects the thresholds used by Classify.
type Kind int

const (
	Margin Kind = iota
	ROI
)

func (k Kind) String() string {
	if k == ROI {
		return "roi"
	}
	return "margin"
}

// Rating is a performance bucket.
type Rating string

const (
	RatingVeryGood Rating = "very-good"
	RatingGood     Rating = "good"
	RatingFair     Rating = "fair"
	RatingPoor     Rating = "poor"
)

var thresholds = map[Kind][3]float64{
	Margin: {30, 20, 10},
	ROI:    {50, 30, 15},
}

// Classify maps a margin or ROI percentage to a rating. Values below the
// lowest threshold, including negatives and NaN, are poor.
func Classify(value float64, kind Kind) Rating {
	t, ok := thresholds[kind]
	if !ok {
		t = thresholds[Margin]
	}
	switch {
	case value >= t[0]:
		return RatingVeryGood
	case value >= t[1]:
		return RatingGood
	case value >= t[2]:
		return RatingFair
	default:
		return RatingPoor
	}
}
