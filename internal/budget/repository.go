package budget

import (
	"context"
	"fmt"
	"time"

	"farm-planner/internal/store"
)

// Repository keeps saved plans in the budgets collection, newest first.
type Repository struct {
	store store.Store
	now   func() time.Time
}

// NewRepository creates a new Repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

// New starts an unsaved plan.
func (r *Repository) New(name, cropType string, landArea float64) (*Plan, error) {
	return NewPlan(name, cropType, landArea, r.now())
}

// List returns every saved plan.
func (r *Repository) List(ctx context.Context) ([]Plan, error) {
	return store.LoadAll[Plan](ctx, r.store, store.Budgets)
}

// Get reopens a saved plan for editing.
func (r *Repository) Get(ctx context.Context, id string) (*Plan, error) {
	plans, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("budget plan %s: %w", id, store.ErrNotFound)
}

// Save persists p. A new plan goes to the front of the collection, a
// reopened one is replaced in place.
func (r *Repository) Save(ctx context.Context, p *Plan) error {
	if len(p.Items) == 0 {
		return ErrEmptyPlan
	}
	p.recompute()

	plans, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range plans {
		if plans[i].ID == p.ID {
			plans[i] = *p
			replaced = true
			break
		}
	}
	if !replaced {
		plans = append([]Plan{*p}, plans...)
	}
	return store.SaveAll(ctx, r.store, store.Budgets, plans)
}

// Delete removes a saved plan.
func (r *Repository) Delete(ctx context.Context, id string) error {
	plans, err := r.List(ctx)
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
		return fmt.Errorf("budget plan %s: %w", id, store.ErrNotFound)
	}
	return store.SaveAll(ctx, r.store, store.Budgets, kept)
}
