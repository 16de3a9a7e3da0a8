package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-planner/internal/budget"
	"farm-planner/internal/harvest"
)

func TestAnalyzeProfitLoss(t *testing.T) {
	records := []harvest.Record{
		rec("North", "Rice", "2024-03-10", 1000, 5000, 500000, 2, ""),
		rec("South", "Rice", "2024-03-20", 500, 5000, 200000, 2, ""),
	}

	t.Run("WithBudget", func(t *testing.T) {
		plan := &budget.Plan{Name: "Rice 2024", CropType: "Rice", TotalBudget: 1000000}

		pl, err := AnalyzeProfitLoss(records, plan)
		require.NoError(t, err)
		assert.Equal(t, 7500000.0, pl.TotalRevenue)
		assert.Equal(t, 700000.0, pl.ActualCost)
		assert.Equal(t, 1000000.0, pl.PlannedBudget)
		assert.Equal(t, -300000.0, pl.BudgetVariance)
		assert.Equal(t, 6800000.0, pl.GrossProfit)
		assert.Equal(t, 6500000.0, pl.NetProfit)
		assert.InDelta(t, 86.67, pl.ProfitMargin, 0.01)
		assert.InDelta(t, 650.0, pl.ROI, 1e-9)
		assert.Equal(t, 5000.0, pl.AveragePrice)
		assert.Equal(t, 375.0, pl.ProductivityPerHectare)
		assert.Equal(t, 1875000.0, pl.RevenuePerHectare)
		assert.Equal(t, 175000.0, pl.CostPerHectare)
		assert.Equal(t, "Rice 2024", pl.BudgetName)
		assert.Equal(t, 2, pl.RecordCount)
	})

	t.Run("WithoutBudget", func(t *testing.T) {
		pl, err := AnalyzeProfitLoss(records, nil)
		require.NoError(t, err)
		assert.Zero(t, pl.PlannedBudget)
		assert.Zero(t, pl.ROI)
		assert.Equal(t, pl.GrossProfit, pl.NetProfit)
		assert.Equal(t, 700000.0, pl.BudgetVariance)
	})

	t.Run("OverBudget", func(t *testing.T) {
		plan := &budget.Plan{TotalBudget: 400000}
		pl, err := AnalyzeProfitLoss(records, plan)
		require.NoError(t, err)
		assert.Equal(t, pl.GrossProfit, pl.NetProfit, "actual cost is the basis when it exceeds the budget")
		assert.Equal(t, 300000.0, pl.BudgetVariance)
	})

	t.Run("NoRecords", func(t *testing.T) {
		_, err := AnalyzeProfitLoss(nil, &budget.Plan{TotalBudget: 1})
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("ZeroDenominators", func(t *testing.T) {
		zero := []harvest.Record{{CropType: "Rice", HarvestCost: 100}}
		pl, err := AnalyzeProfitLoss(zero, nil)
		require.NoError(t, err)
		for name, v := range map[string]float64{
			"averagePrice":           pl.AveragePrice,
			"profitMargin":           pl.ProfitMargin,
			"roi":                    pl.ROI,
			"productivityPerHectare": pl.ProductivityPerHectare,
			"revenuePerHectare":      pl.RevenuePerHectare,
			"costPerHectare":         pl.CostPerHectare,
		} {
			assert.Zero(t, v, name)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
		}
	})
}

func TestNetProfitNeverExceedsGross(t *testing.T) {
	records := []harvest.Record{rec("A", "Rice", "2024-01-01", 10, 100, 250, 1, "")}
	for _, planned := range []float64{0, 100, 250, 251, 5000} {
		pl, err := AnalyzeProfitLoss(records, &budget.Plan{TotalBudget: planned})
		require.NoError(t, err)
		assert.LessOrEqual(t, pl.NetProfit, pl.GrossProfit, "planned %v", planned)
		if pl.ActualCost >= planned {
			assert.Equal(t, pl.GrossProfit, pl.NetProfit, "planned %v", planned)
		} else {
			assert.Less(t, pl.NetProfit, pl.GrossProfit, "planned %v", planned)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		value float64
		kind  Kind
		want  Rating
	}{
		{30, Margin, RatingVeryGood},
		{29.9, Margin, RatingGood},
		{19.9, Margin, RatingFair},
		{20, Margin, RatingGood},
		{10, Margin, RatingFair},
		{9.99, Margin, RatingPoor},
		{-40, Margin, RatingPoor},
		{50, ROI, RatingVeryGood},
		{30, ROI, RatingGood},
		{15, ROI, RatingFair},
		{14.9, ROI, RatingPoor},
		{math.NaN(), ROI, RatingPoor},
		{math.Inf(1), ROI, RatingVeryGood},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.value, tt.kind), "%s %v", tt.kind, tt.value)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	order := map[Rating]int{RatingPoor: 0, RatingFair: 1, RatingGood: 2, RatingVeryGood: 3}
	for _, kind := range []Kind{Margin, ROI} {
		prev := RatingPoor
		for v := -10.0; v <= 100; v += 0.5 {
			got := Classify(v, kind)
			assert.GreaterOrEqual(t, order[got], order[prev], "%s %v", kind, v)
			prev = got
		}
	}
}
