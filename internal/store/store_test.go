package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-planner/internal/database"
	"farm-planner/internal/store"
)

type sample struct {
	ID        string            `json:"id"`
	Quantity  float64           `json:"quantity"`
	Price     float64           `json:"price"`
	Date      string            `json:"date"`
	CreatedAt time.Time         `json:"createdAt"`
	Tags      []string          `json:"tags"`
	Extra     map[string]string `json:"extra,omitempty"`
	Optional  *time.Time        `json:"optional,omitempty"`
}

func backends(t *testing.T) map[string]store.Store {
	t.Helper()

	fileStore, err := store.NewFile(filepath.Join(t.TempDir(), "records"))
	require.NoError(t, err)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "farm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]store.Store{
		"File":   fileStore,
		"SQLite": store.NewSQLite(db.SQL),
		"Memory": store.NewMemory(),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2024, 3, 14, 9, 26, 53, 589793000, time.UTC)
	later := stamp.Add(90 * time.Minute)

	records := []sample{
		{ID: "a", Quantity: 1234.5678, Price: 0.1, Date: "2024-03-14", CreatedAt: stamp, Tags: []string{"x"}},
		{ID: "b", Quantity: 1e-7, Price: 1e12, Date: "2023-12-31", CreatedAt: later, Tags: []string{}, Extra: map[string]string{"k": "v"}, Optional: &later},
	}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("NeverWritten", func(t *testing.T) {
				got, err := store.LoadAll[sample](ctx, s, "never-written")
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			})

			t.Run("SaveThenLoad", func(t *testing.T) {
				require.NoError(t, store.SaveAll(ctx, s, store.Harvests, records))

				got, err := store.LoadAll[sample](ctx, s, store.Harvests)
				require.NoError(t, err)
				if diff := cmp.Diff(records, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("ReplaceAll", func(t *testing.T) {
				require.NoError(t, store.SaveAll(ctx, s, store.Harvests, records[:1]))

				got, err := store.LoadAll[sample](ctx, s, store.Harvests)
				require.NoError(t, err)
				assert.Len(t, got, 1)
			})

			t.Run("SaveEmpty", func(t *testing.T) {
				require.NoError(t, store.SaveAll[sample](ctx, s, store.Drafts, nil))

				got, err := store.LoadAll[sample](ctx, s, store.Drafts)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			})

			t.Run("InvalidName", func(t *testing.T) {
				err := s.Save(ctx, "../escape", []byte("[]"))
				assert.Error(t, err)
			})
		})
	}
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveAll(context.Background(), s, store.Budgets, []sample{{ID: "1"}}))

	_, err = os.Stat(filepath.Join(dir, "budgets.json"))
	assert.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files must not be left behind")
}

func TestLoadCorrupt(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Save(context.Background(), store.Harvests, []byte("{not json")))

	_, err := store.LoadAll[sample](context.Background(), s, store.Harvests)
	assert.Error(t, err)
}
