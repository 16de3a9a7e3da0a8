package harvest

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

func validInput() Input {
	return Input{
		LandName:    "North Field",
		CropType:    "Rice",
		Variety:     "IR64",
		LandArea:    2,
		HarvestDate: "2024-03-14",
		Quantity:    1000,
		Unit:        "kg",
		Quality:     QualityGood,
		UnitPrice:   5000,
		HarvestCost: 500000,
	}
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"MissingLand", func(in *Input) { in.LandName = " " }, ""},
		{"MissingCrop", func(in *Input) { in.CropType = "" }, ""},
		{"MissingDate", func(in *Input) { in.HarvestDate = "" }, ""},
		{"ZeroQuantity", func(in *Input) { in.Quantity = 0 }, ""},
		{"NegativeQuantity", func(in *Input) { in.Quantity = -1 }, "quantity"},
		{"NegativeArea", func(in *Input) { in.LandArea = -0.5 }, "landArea"},
		{"NegativePrice", func(in *Input) { in.UnitPrice = -1 }, "unitPrice"},
		{"NegativeCost", func(in *Input) { in.HarvestCost = -1 }, "harvestCost"},
		{"UnknownQuality", func(in *Input) { in.Quality = "excellent" }, "qualityGrade"},
		{"BadHarvestDate", func(in *Input) { in.HarvestDate = "14/03/2024" }, "harvestDate"},
		{"BadPlantingDate", func(in *Input) { in.PlantingDate = "soon" }, "plantingDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := in.Validate()
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validInput().Validate())
	})

	t.Run("EmptyQualityAllowed", func(t *testing.T) {
		in := validInput()
		in.Quality = ""
		assert.NoError(t, in.Validate())
	})

	t.Run("RFC3339Date", func(t *testing.T) {
		in := validInput()
		in.HarvestDate = "2024-03-14T08:00:00Z"
		assert.NoError(t, in.Validate())
	})
}

func TestTotalSaleAmountIsDerived(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	rec, err := NewRecord(validInput(), now)
	require.NoError(t, err)
	assert.Equal(t, 5000000.0, rec.TotalSaleAmount)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, now, rec.CreatedAt)

	in := validInput()
	in.Quantity = 0.1
	in.UnitPrice = 3
	edited, err := rec.Edit(in)
	require.NoError(t, err)
	assert.Equal(t, 0.3, edited.TotalSaleAmount)
	assert.Equal(t, rec.ID, edited.ID)
	assert.Equal(t, rec.CreatedAt, edited.CreatedAt)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }

	first, err := repo.Create(ctx, validInput())
	require.NoError(t, err)
	second, err := repo.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		records, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, first.ID, records[0].ID)
		assert.Equal(t, second.ID, records[1].ID)
	})

	t.Run("UpdateRecomputesTotal", func(t *testing.T) {
		repo.now = func() time.Time { return created.Add(time.Hour) }
		in := validInput()
		in.Quantity = 500
		updated, err := repo.Update(ctx, first.ID, in)
		require.NoError(t, err)
		assert.Equal(t, 2500000.0, updated.TotalSaleAmount)
		assert.Equal(t, created, updated.CreatedAt)

		stored, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("InvalidUpdateDoesNotMutate", func(t *testing.T) {
		in := validInput()
		in.Quantity = -5
		_, err := repo.Update(ctx, first.ID, in)
		require.Error(t, err)

		stored, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 500.0, stored.Quantity)
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		_, err := repo.Update(ctx, "missing", validInput())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		records, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		assert.ErrorIs(t, repo.Delete(ctx, second.ID), store.ErrNotFound)
	})
}
