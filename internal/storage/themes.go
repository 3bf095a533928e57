package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/consensuslabs/chronicle/pkg/story"
)

// Theme operations (filesystem-backed)

func (r *RedisStorage) GetTheme(ctx context.Context, id string) (*story.Theme, error) {
	path := filepath.Join(r.dataDir, "themes", id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("theme not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var t story.Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal theme %s: %w", id, err)
	}
	t.ID = id // Filename overrides any ID in the JSON

	return &t, nil
}

func (r *RedisStorage) ListThemes(ctx context.Context) ([]*story.Theme, error) {
	themesDir := filepath.Join(r.dataDir, "themes")

	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*story.Theme{}, nil
		}
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var themes []*story.Theme
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		t, err := r.GetTheme(ctx, id)
		if err != nil {
			r.logger.Warn("Skipping unreadable theme file", "file", entry.Name(), "error", err)
			continue
		}
		themes = append(themes, t)
	}

	sort.Slice(themes, func(i, j int) bool { return themes[i].ID < themes[j].ID })
	return themes, nil
}
