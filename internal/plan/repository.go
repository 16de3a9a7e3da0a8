package plan

import (
	"context"
	"fmt"

	"farm-planner/internal/store"
)

// Repository keeps planting plans and final plans, newest first.
type Repository struct {
	store store.Store
}

// NewRepository creates a new Repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// ListPlanting returns every planting plan.
func (r *Repository) ListPlanting(ctx context.Context) ([]PlantingPlan, error) {
	return store.LoadAll[PlantingPlan](ctx, r.store, store.PlantingPlans)
}

// GetPlanting returns the planting plan with the given id.
func (r *Repository) GetPlanting(ctx context.Context, id string) (PlantingPlan, error) {
	plans, err := r.ListPlanting(ctx)
	if err != nil {
		return PlantingPlan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return PlantingPlan{}, fmt.Errorf("planting plan %s: %w", id, store.ErrNotFound)
}

// AddPlanting saves a new planting plan.
func (r *Repository) AddPlanting(ctx context.Context, p PlantingPlan) error {
	plans, err := r.ListPlanting(ctx)
	if err != nil {
		return err
	}
	return store.SaveAll(ctx, r.store, store.PlantingPlans, append([]PlantingPlan{p}, plans...))
}

// ListFinal returns every final plan.
func (r *Repository) ListFinal(ctx context.Context) ([]FinalPlan, error) {
	return store.LoadAll[FinalPlan](ctx, r.store, store.FinalPlans)
}

// GetFinal returns the final plan with the given id.
func (r *Repository) GetFinal(ctx context.Context, id string) (FinalPlan, error) {
	plans, err := r.ListFinal(ctx)
	if err != nil {
		return FinalPlan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return FinalPlan{}, fmt.Errorf("final plan %s: %w", id, store.ErrNotFound)
}

// AddFinal saves a new final plan.
func (r *Repository) AddFinal(ctx context.Context, p FinalPlan) error {
	plans, err := r.ListFinal(ctx)
	if err != nil {
		return err
	}
	return store.SaveAll(ctx, r.store, store.FinalPlans, append([]FinalPlan{p}, plans...))
}

// UpdateFinal applies fn to the stored final plan and saves the result.
// Nothing is written when fn fails.
func (r *Repository) UpdateFinal(ctx context.Context, id string, fn func(*FinalPlan) error) (FinalPlan, error) {
	plans, err := r.ListFinal(ctx)
	if err != nil {
		return FinalPlan{}, err
	}
	for i := range plans {
		if plans[i].ID != id {
			continue
		}
		p := plans[i]
		if err := fn(&p); err != nil {
			return FinalPlan{}, err
		}
		plans[i] = p
		if err := store.SaveAll(ctx, r.store, store.FinalPlans, plans); err != nil {
			return FinalPlan{}, err
		}
		return p, nil
	}
	return FinalPlan{}, fmt.Errorf("final plan %s: %w", id, store.ErrNotFound)
}

// DeleteFinal removes a final plan.
func (r *Repository) DeleteFinal(ctx context.Context, id string) error {
	plans, err := r.ListFinal(ctx)
	if err != nil {
		return err
	}
	kept := plans[:0]
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return fmt.Errorf("final plan %s: %w", id, store.ErrNotFound)
	}
	return store.SaveAll(ctx, r.store, store.FinalPlans, kept)
}
