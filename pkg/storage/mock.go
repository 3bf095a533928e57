package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/story"
)

// MockStorage is an in-memory Storage for tests and offline play.
type MockStorage struct {
	mu          sync.RWMutex
	profile     *score.Profile
	history     []score.HistoryEntry
	leaderboard []score.LeaderboardEntry
	themes      map[string]*story.Theme
	themeOrder  []string
}

// Ensure MockStorage implements Storage
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{themes: make(map[string]*story.Theme)}
}

// AddTheme registers a theme for lookup. Intended for test setup.
func (m *MockStorage) AddTheme(t *story.Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.themes[t.ID]; !ok {
		m.themeOrder = append(m.themeOrder, t.ID)
	}
	m.themes[t.ID] = t
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) LoadProfile(ctx context.Context) (*score.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil, nil
	}
	cp := *m.profile
	return &cp, nil
}

func (m *MockStorage) SaveProfile(ctx context.Context, p *score.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profile = &cp
	return nil
}

func (m *MockStorage) AppendHistory(ctx context.Context, e score.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]score.HistoryEntry{e}, m.history...)
	if len(m.history) > score.HistoryLimit {
		m.history = m.history[:score.HistoryLimit]
	}
	return nil
}

func (m *MockStorage) ListHistory(ctx context.Context) ([]score.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]score.HistoryEntry, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *MockStorage) RecordScore(ctx context.Context, e score.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboard = append(m.leaderboard, e)
	sort.SliceStable(m.leaderboard, func(i, j int) bool {
		return m.leaderboard[i].Points > m.leaderboard[j].Points
	})
	if len(m.leaderboard) > score.LeaderboardLimit {
		m.leaderboard = m.leaderboard[:score.LeaderboardLimit]
	}
	return nil
}

func (m *MockStorage) ListLeaderboard(ctx context.Context) ([]score.LeaderboardEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]score.LeaderboardEntry, len(m.leaderboard))
	copy(out, m.leaderboard)
	return out, nil
}

func (m *MockStorage) GetTheme(ctx context.Context, id string) (*story.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[id]
	if !ok {
		return nil, fmt.Errorf("theme not found: %s", id)
	}
	return t, nil
}

func (m *MockStorage) ListThemes(ctx context.Context) ([]*story.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*story.Theme, 0, len(m.themeOrder))
	for _, id := range m.themeOrder {
		out = append(out, m.themes[id])
	}
	return out, nil
}
