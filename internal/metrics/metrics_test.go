package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-planner/internal/database"
	"farm-planner/internal/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.RecordUsage(ctx, "drafting", llm.TokenUsage{PromptTokens: 100, CompletionTokens: 400, Model: "m"}, 2*time.Second, true))
	require.NoError(t, s.RecordUsage(ctx, "drafting", llm.TokenUsage{}, time.Second, false))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "drafting", PromptTokens: 50, CompletionTokens: 60, LatencyMS: 500, Success: true, Timestamp: now.AddDate(0, 0, -1)}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "drafting", PromptTokens: 1, Success: true, Timestamp: now.AddDate(0, 0, -40)}))

	t.Run("DailyUsage", func(t *testing.T) {
		usage, err := s.GetDailyUsage(ctx, 7)
		require.NoError(t, err)
		require.Len(t, usage, 2)

		assert.Equal(t, DailyUsage{
			Date: "2024-08-10", TotalPrompt: 100, TotalCompletion: 400,
			TotalExecution: 2, Failures: 1, AvgLatencyMS: 1500,
		}, usage[0])
		assert.Equal(t, "2024-08-09", usage[1].Date)
		assert.Equal(t, 1, usage[1].TotalExecution)
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := s.Cleanup(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		usage, err := s.GetDailyUsage(ctx, 365)
		require.NoError(t, err)
		assert.Len(t, usage, 2)
	})
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harvests.json"), make([]byte, 2048), 0644))

	h := GetSysHealth(dir)
	assert.Equal(t, "2.0 KiB", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
}
