package draft

import (
	"context"
	"fmt"

	"farm-planner/internal/store"
)

// Repository keeps drafts in the drafts collection, newest first.
type Repository struct {
	store store.Store
}

// NewRepository creates a new Repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// List returns every draft.
func (r *Repository) List(ctx context.Context) ([]Draft, error) {
	return store.LoadAll[Draft](ctx, r.store, store.Drafts)
}

// ListByStatus returns the drafts currently in one of the given states.
func (r *Repository) ListByStatus(ctx context.Context, statuses ...Status) ([]Draft, error) {
	drafts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := []Draft{}
	for _, d := range drafts {
		for _, s := range statuses {
			if d.CurrentStatus() == s {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched, nil
}

// Get returns the draft with the given id.
func (r *Repository) Get(ctx context.Context, id string) (Draft, error) {
	drafts, err := r.List(ctx)
	if err != nil {
		return Draft{}, err
	}
	for _, d := range drafts {
		if d.ID == id {
			return d, nil
		}
	}
	return Draft{}, fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
}

// Add saves a new draft at the front of the collection.
func (r *Repository) Add(ctx context.Context, d Draft) error {
	drafts, err := r.List(ctx)
	if err != nil {
		return err
	}
	return store.SaveAll(ctx, r.store, store.Drafts, append([]Draft{d}, drafts...))
}

// Update applies fn to the stored draft and saves the result. Nothing is
// written when fn fails.
func (r *Repository) Update(ctx context.Context, id string, fn func(*Draft) error) (Draft, error) {
	drafts, err := r.List(ctx)
	if err != nil {
		return Draft{}, err
	}
	for i := range drafts {
		if drafts[i].ID != id {
			continue
		}
		d := drafts[i]
		if err := fn(&d); err != nil {
			return Draft{}, err
		}
		drafts[i] = d
		if err := store.SaveAll(ctx, r.store, store.Drafts, drafts); err != nil {
			return Draft{}, err
		}
		return d, nil
	}
	return Draft{}, fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
}

// Delete removes a draft.
func (r *Repository) Delete(ctx context.Context, id string) error {
	drafts, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(drafts) {
		return fmt.Errorf("draft %s: %w", id, store.ErrNotFound)
	}
	return store.SaveAll(ctx, r.store, store.Drafts, kept)
}
