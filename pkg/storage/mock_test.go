package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/story"
)

func TestMockStorage_ProfileRoundTrip(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	loaded, err := m.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "unset profile should load as nil")

	p := &score.Profile{ID: uuid.New(), Name: "Ada", Balance: 100}
	require.NoError(t, m.SaveProfile(ctx, p))

	loaded, err = m.LoadProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, p.ID, loaded.ID)

	// The stored copy must be isolated from later caller mutations.
	p.Balance = 0
	loaded, err = m.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, loaded.Balance)
}

func TestMockStorage_HistoryCapAndOrder(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	for i := 0; i < score.HistoryLimit+3; i++ {
		require.NoError(t, m.AppendHistory(ctx, score.HistoryEntry{ID: uuid.New(), Points: i}))
	}

	entries, err := m.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, score.HistoryLimit)
	assert.Equal(t, score.HistoryLimit+2, entries[0].Points, "newest entry first")
}

func TestMockStorage_LeaderboardCapAndOrder(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	for i := 0; i < score.LeaderboardLimit+3; i++ {
		require.NoError(t, m.RecordScore(ctx, score.LeaderboardEntry{ID: uuid.New(), Points: i}))
	}

	entries, err := m.ListLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, score.LeaderboardLimit)
	assert.Equal(t, score.LeaderboardLimit+2, entries[0].Points, "highest score first")
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i].Points, entries[i-1].Points)
	}
}

func TestMockStorage_Themes(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	_, err := m.GetTheme(ctx, "missing")
	assert.Error(t, err)

	m.AddTheme(&story.Theme{ID: "fantasy", Name: "Fantasy Quest"})
	m.AddTheme(&story.Theme{ID: "scifi", Name: "Stellar Crisis"})

	theme, err := m.GetTheme(ctx, "fantasy")
	require.NoError(t, err)
	assert.Equal(t, "Fantasy Quest", theme.Name)

	themes, err := m.ListThemes(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "fantasy", themes[0].ID, "insertion order preserved")
}
