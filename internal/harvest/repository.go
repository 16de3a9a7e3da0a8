package harvest

import (
	"context"
	"fmt"
	"time"

	"farm-planner/internal/store"
)

// Repository keeps harvest records in the harvests collection.
type Repository struct {
	store store.Store
	now   func() time.Time
}

// NewRepository creates a new Repository.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

// List returns every record in insertion order.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	return store.LoadAll[Record](ctx, r.store, store.Harvests)
}

// Get returns the record with the given id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	records, err := r.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("harvest record %s: %w", id, store.ErrNotFound)
}

// Create validates and appends a new record.
func (r *Repository) Create(ctx context.Context, in Input) (Record, error) {
	rec, err := NewRecord(in, r.now())
	if err != nil {
		return Record{}, err
	}
	records, err := r.List(ctx)
	if err != nil {
		return Record{}, err
	}
	if err := store.SaveAll(ctx, r.store, store.Harvests, append(records, rec)); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update replaces the editable fields of an existing record in place.
func (r *Repository) Update(ctx context.Context, id string, in Input) (Record, error) {
	records, err := r.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for i, rec := range records {
		if rec.ID != id {
			continue
		}
		updated, err := rec.Edit(in)
		if err != nil {
			return Record{}, err
		}
		records[i] = updated
		if err := store.SaveAll(ctx, r.store, store.Harvests, records); err != nil {
			return Record{}, err
		}
		return updated, nil
	}
	return Record{}, fmt.Errorf("harvest record %s: %w", id, store.ErrNotFound)
}

// Delete removes a record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	records, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return fmt.Errorf("harvest record %s: %w", id, store.ErrNotFound)
	}
	return store.SaveAll(ctx, r.store, store.Harvests, kept)
}
