// Package store persists whole record collections as JSON documents keyed by
// collection name. Callers load an entire collection, change it in memory and
// save it back; there is no locking between processes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Collection keys.
const (
	Harvests      = "harvests"
	Budgets       = "budgets"
	Drafts        = "drafts"
	PlantingPlans = "planting-plans"
	FinalPlans    = "final-plans"
)

// ErrNotFound is returned when a collection or record does not exist.
var ErrNotFound = errors.New("not found")

// Store is a key-value store of serialized collections.
type Store interface {
	// Load returns the raw document saved under collection, or ErrNotFound.
	Load(ctx context.Context, collection string) ([]byte, error)
	// Save replaces the document saved under collection.
	Save(ctx context.Context, collection string, data []byte) error
}

var collectionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func checkName(collection string) error {
	if !collectionName.MatchString(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	return nil
}

// LoadAll decodes every record of a collection. A collection that was never
// written yields an empty, non-nil slice.
func LoadAll[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	data, err := s.Load(ctx, collection)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	records := []T{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", collection, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// SaveAll encodes and replaces every record of a collection.
func SaveAll[T any](ctx context.Context, s Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", collection, err)
	}
	if err := s.Save(ctx, collection, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", collection, err)
	}
	return nil
}
