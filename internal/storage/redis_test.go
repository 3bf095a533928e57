package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/consensuslabs/chronicle/pkg/score"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStorage("redis://"+mr.Addr(), t.TempDir(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create redis storage: %v", err)
	}

	return store, mr
}

func TestRedisStorage_SaveAndLoadProfile(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	p := &score.Profile{
		ID:             uuid.New(),
		Name:           "Ada",
		Avatar:         "🎮",
		Balance:        140,
		LifetimeEarned: 50,
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	loaded, err := store.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil profile")
	}
	if loaded.ID != p.ID {
		t.Errorf("Expected ID %v, got %v", p.ID, loaded.ID)
	}
	if loaded.Balance != 140 || loaded.LifetimeEarned != 50 {
		t.Errorf("Expected balance 140 / earned 50, got %d / %d", loaded.Balance, loaded.LifetimeEarned)
	}
}

func TestRedisStorage_LoadMissingProfile(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	loaded, err := store.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for missing profile, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing profile")
	}
}

func TestRedisStorage_HistoryOrderAndCap(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	for i := 0; i < score.HistoryLimit+5; i++ {
		e := score.HistoryEntry{
			ID:        uuid.New(),
			ThemeID:   "fantasy",
			ThemeName: "Fantasy Quest",
			Points:    i,
			Reward:    50 + i/2,
			Fee:       10,
			Net:       40 + i/2,
		}
		if err := store.AppendHistory(ctx, e); err != nil {
			t.Fatalf("Failed to append history entry %d: %v", i, err)
		}
	}

	entries, err := store.ListHistory(ctx)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(entries) != score.HistoryLimit {
		t.Fatalf("Expected history capped at %d, got %d", score.HistoryLimit, len(entries))
	}

	// Most recent first: the last appended entry leads the list.
	if entries[0].Points != score.HistoryLimit+4 {
		t.Errorf("Expected newest entry first (points %d), got %d", score.HistoryLimit+4, entries[0].Points)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Points != entries[i-1].Points-1 {
			t.Fatalf("History out of order at %d: %d then %d", i, entries[i-1].Points, entries[i].Points)
		}
	}
}

func TestRedisStorage_LeaderboardRankAndCap(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	for i := 0; i < score.LeaderboardLimit+5; i++ {
		e := score.LeaderboardEntry{
			ID:      uuid.New(),
			Name:    fmt.Sprintf("player-%d", i),
			Points:  i * 10,
			ThemeID: "scifi",
		}
		if err := store.RecordScore(ctx, e); err != nil {
			t.Fatalf("Failed to record score %d: %v", i, err)
		}
	}

	entries, err := store.ListLeaderboard(ctx)
	if err != nil {
		t.Fatalf("Failed to list leaderboard: %v", err)
	}
	if len(entries) != score.LeaderboardLimit {
		t.Fatalf("Expected leaderboard capped at %d, got %d", score.LeaderboardLimit, len(entries))
	}

	// Descending by points; the lowest scores were evicted.
	if entries[0].Points != (score.LeaderboardLimit+4)*10 {
		t.Errorf("Expected top score %d, got %d", (score.LeaderboardLimit+4)*10, entries[0].Points)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Points > entries[i-1].Points {
			t.Fatalf("Leaderboard out of order at %d: %d then %d", i, entries[i-1].Points, entries[i].Points)
		}
	}
	last := entries[len(entries)-1].Points
	if last != 5*10 {
		t.Errorf("Expected lowest retained score 50, got %d", last)
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Expected successful ping: %v", err)
	}

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after server shutdown")
	}
}
