package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-planner/internal/store"
	"farm-planner/internal/validation"
)

var day = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func seedInput() ItemInput {
	return ItemInput{Category: CategorySeed, Name: "Rice seed", Unit: "kg", Quantity: 25, UnitPrice: 12000}
}

func TestNewPlan(t *testing.T) {
	t.Run("StartsEmptyDraft", func(t *testing.T) {
		p, err := NewPlan("Dry season", "Rice", 2, day)
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, p.Status)
		assert.Empty(t, p.Items)
		assert.Zero(t, p.TotalBudget)
	})

	t.Run("RequiresFields", func(t *testing.T) {
		for _, args := range []struct {
			name, crop string
			area       float64
		}{
			{"", "Rice", 2},
			{"Plan", " ", 2},
			{"Plan", "Rice", 0},
			{"Plan", "Rice", -1},
		} {
			_, err := NewPlan(args.name, args.crop, args.area, day)
			var verr *validation.Error
			assert.True(t, errors.As(err, &verr), "args %+v", args)
		}
	})
}

func TestTotalBudgetTracksItems(t *testing.T) {
	p, err := NewPlan("Dry season", "Rice", 2, day)
	require.NoError(t, err)

	seed, err := p.AddItem(seedInput())
	require.NoError(t, err)
	assert.Equal(t, 300000.0, seed.TotalPrice)
	assert.Equal(t, 300000.0, p.TotalBudget)

	urea, err := p.AddItem(ItemInput{Category: CategoryFertilizer, Name: "Urea", Quantity: 0.1, UnitPrice: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.3, urea.TotalPrice)
	assert.Equal(t, 300000.3, p.TotalBudget)

	_, err = p.UpdateItem(seed.ID, ItemInput{Category: CategorySeed, Name: "Rice seed", Quantity: 10, UnitPrice: 12000})
	require.NoError(t, err)
	assert.Equal(t, 120000.3, p.TotalBudget)
	assert.Equal(t, seed.ID, p.Items[0].ID, "update keeps position and id")

	require.NoError(t, p.RemoveItem(seed.ID))
	assert.Equal(t, 0.3, p.TotalBudget)

	require.NoError(t, p.RemoveItem(urea.ID))
	assert.Empty(t, p.Items)
	assert.Equal(t, 0.0, p.TotalBudget)

	assert.ErrorIs(t, p.RemoveItem("missing"), ErrItemNotFound)
	_, err = p.UpdateItem("missing", seedInput())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemValidation(t *testing.T) {
	p, err := NewPlan("Dry season", "Rice", 2, day)
	require.NoError(t, err)

	bad := []ItemInput{
		{Name: "No category", Quantity: 1},
		{Category: "tractor", Name: "Unknown", Quantity: 1},
		{Category: CategoryLabor, Quantity: 1},
		{Category: CategoryLabor, Name: "Harvesters", Quantity: -2},
		{Category: CategoryLabor, Name: "Harvesters", Quantity: 2, UnitPrice: -1},
	}
	for _, in := range bad {
		_, err := p.AddItem(in)
		assert.Error(t, err, "input %+v", in)
	}
	assert.Empty(t, p.Items, "rejected items are never added")

	_, err = p.AddItem(ItemInput{Category: CategoryOther, Name: "Donated", Quantity: 1})
	assert.NoError(t, err, "a zero unit price is allowed")
}

func TestCategoryTotals(t *testing.T) {
	p, err := NewPlan("Dry season", "Rice", 2, day)
	require.NoError(t, err)
	_, _ = p.AddItem(ItemInput{Category: CategoryLabor, Name: "Planting", Quantity: 4, UnitPrice: 100})
	_, _ = p.AddItem(seedInput())
	_, _ = p.AddItem(ItemInput{Category: CategoryLabor, Name: "Harvest", Quantity: 2, UnitPrice: 100})

	assert.Equal(t, []CategoryTotal{
		{Category: CategorySeed, Total: 300000},
		{Category: CategoryLabor, Total: 600},
	}, p.CategoryTotals())
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	repo.now = func() time.Time { return day }

	first, err := repo.New("First", "Rice", 1)
	require.NoError(t, err)

	t.Run("RejectsEmptyPlan", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, first), ErrEmptyPlan)
		plans, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	_, err = first.AddItem(seedInput())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := repo.New("Second", "Corn", 3)
	require.NoError(t, err)
	_, err = second.AddItem(seedInput())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	t.Run("NewestFirst", func(t *testing.T) {
		plans, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, second.ID, plans[0].ID)
		assert.Equal(t, first.ID, plans[1].ID)
	})

	t.Run("ReopenAndReplaceInPlace", func(t *testing.T) {
		reopened, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		_, err = reopened.AddItem(ItemInput{Category: CategoryIrrigation, Name: "Pump rent", Quantity: 1, UnitPrice: 50000})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, reopened))

		plans, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, first.ID, plans[1].ID)
		assert.Equal(t, 350000.0, plans[1].TotalBudget)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		assert.ErrorIs(t, repo.Delete(ctx, second.ID), store.ErrNotFound)
		_, err := repo.Get(ctx, second.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
