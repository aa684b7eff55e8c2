package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thinkscotty/reelhouse/internal/models"
)

func TestRenderLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entries := []models.RenderLog{
		{ID: "a", Scope: "list", Provider: "gemini", Outcome: models.OutcomeFallback, Reason: "provider credential not configured"},
		{ID: "b", Scope: "detail", Slug: "vertigo-1958", Provider: "gemini", Model: "gemini-2.5-flash", Outcome: models.OutcomeProvider, DurationMs: 1200},
		{ID: "c", Scope: "list", Provider: "openai", Outcome: models.OutcomeProvider},
	}
	for _, e := range entries {
		require.NoError(t, db.LogRender(ctx, e))
	}

	recent, err := db.RecentRenders(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, "b", recent[1].ID)
	require.Equal(t, "vertigo-1958", recent[1].Slug)
	require.Equal(t, int64(1200), recent[1].DurationMs)
	require.False(t, recent[1].CreatedAt.IsZero())

	stats, err := db.GetRenderStats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalRenders)
	require.Equal(t, 2, stats.ProviderRenders)
	require.Equal(t, 1, stats.FallbackRenders)
}

func TestCleanOldRenders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.LogRender(ctx, models.RenderLog{ID: "new", Scope: "list", Outcome: models.OutcomeFallback}))
	_, err := db.conn.Exec(`INSERT INTO render_log (id, scope, outcome, created_at) VALUES ('old', 'list', 'fallback', datetime('now', '-40 days'))`)
	require.NoError(t, err)

	require.NoError(t, db.CleanOldRenders(30))

	recent, err := db.RecentRenders(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "new", recent[0].ID)
}
