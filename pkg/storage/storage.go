package storage

import (
	"context"

	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/story"
)

// Storage is the key-value collaborator behind the game: player profile,
// bounded history log, capped leaderboard, and read-only theme content.
// Dynamic state is store-backed (Redis in production); themes load from
// the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Profile operations. LoadProfile returns nil when no profile has
	// been saved yet; callers fall back to a default.
	LoadProfile(ctx context.Context) (*score.Profile, error)
	SaveProfile(ctx context.Context, p *score.Profile) error

	// History operations. Entries are most-recent-first and capped at
	// score.HistoryLimit; the oldest entries are evicted past the cap.
	AppendHistory(ctx context.Context, e score.HistoryEntry) error
	ListHistory(ctx context.Context) ([]score.HistoryEntry, error)

	// Leaderboard operations. Entries are sorted descending by points
	// and capped at score.LeaderboardLimit.
	RecordScore(ctx context.Context, e score.LeaderboardEntry) error
	ListLeaderboard(ctx context.Context) ([]score.LeaderboardEntry, error)

	// Theme operations (filesystem-backed, read-only)
	GetTheme(ctx context.Context, id string) (*story.Theme, error)
	ListThemes(ctx context.Context) ([]*story.Theme, error)
}
