package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/storage"
)

const (
	profileKey     = "chronicle:profile"
	historyKey     = "chronicle:history"
	leaderboardKey = "chronicle:leaderboard"
)

// RedisStorage implements the Storage interface using Redis for dynamic
// state (profile, history, leaderboard) and the filesystem for static
// content (themes).
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements the Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL accepts
// either a redis:// URL or a bare host:port address.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opts)

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Profile operations (Redis-backed)

func (r *RedisStorage) SaveProfile(ctx context.Context, p *score.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("Failed to marshal profile", "error", err)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := r.client.Set(ctx, profileKey, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save profile", "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadProfile(ctx context.Context) (*score.Profile, error) {
	data, err := r.client.Get(ctx, profileKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load profile", "error", err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var p score.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		r.logger.Error("Failed to unmarshal profile", "error", err)
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// History operations (Redis list, most recent first)

func (r *RedisStorage) AppendHistory(ctx context.Context, e score.HistoryEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, historyKey, string(data))
	pipe.LTrim(ctx, historyKey, 0, int64(score.HistoryLimit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to append history entry", "error", err)
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListHistory(ctx context.Context) ([]score.HistoryEntry, error) {
	items, err := r.client.LRange(ctx, historyKey, 0, int64(score.HistoryLimit-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]score.HistoryEntry, 0, len(items))
	for _, item := range items {
		var e score.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.Warn("Skipping unreadable history entry", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Leaderboard operations (Redis sorted set, descending by points)

func (r *RedisStorage) RecordScore(ctx context.Context, e score.LeaderboardEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(e.Points),
		Member: string(data),
	})
	// Keep only the top entries.
	pipe.ZRemRangeByRank(ctx, leaderboardKey, 0, int64(-(score.LeaderboardLimit + 1)))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to record leaderboard entry", "error", err)
		return fmt.Errorf("failed to record leaderboard entry: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListLeaderboard(ctx context.Context) ([]score.LeaderboardEntry, error) {
	items, err := r.client.ZRevRange(ctx, leaderboardKey, 0, int64(score.LeaderboardLimit-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}

	entries := make([]score.LeaderboardEntry, 0, len(items))
	for _, item := range items {
		var e score.LeaderboardEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.Warn("Skipping unreadable leaderboard entry", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
