package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const themeJSON = `{
  "name": "Fantasy Quest",
  "icon": "🏰",
  "opening": "The kingdom teeters on the edge of ruin.",
  "rounds": [
    {
      "context": "A dragon circles the capital.",
      "a": {"tag": "Bold", "text": "Attack it", "ending": "The dragon falls."},
      "b": {"tag": "Safe", "text": "Negotiate", "ending": "An uneasy peace holds."}
    }
  ]
}`

func writeThemeFile(t *testing.T, dir, id, content string) {
	t.Helper()
	themesDir := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		t.Fatalf("Failed to create themes dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(themesDir, id+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write theme file: %v", err)
	}
}

func testThemeStore(t *testing.T, dataDir string) *RedisStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return &RedisStorage{logger: logger, dataDir: dataDir}
}

func TestGetTheme(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "fantasy", themeJSON)
	store := testThemeStore(t, dir)

	theme, err := store.GetTheme(context.Background(), "fantasy")
	if err != nil {
		t.Fatalf("Failed to load theme: %v", err)
	}
	if theme.ID != "fantasy" {
		t.Errorf("Expected ID from filename, got %q", theme.ID)
	}
	if theme.Name != "Fantasy Quest" {
		t.Errorf("Expected name 'Fantasy Quest', got %q", theme.Name)
	}
	if theme.TotalRounds() != 1 {
		t.Errorf("Expected 1 round, got %d", theme.TotalRounds())
	}
	if theme.Rounds[0].OptionA.Tag != "Bold" {
		t.Errorf("Option A not decoded: %+v", theme.Rounds[0].OptionA)
	}
}

func TestGetTheme_NotFound(t *testing.T) {
	store := testThemeStore(t, t.TempDir())

	if _, err := store.GetTheme(context.Background(), "missing"); err == nil {
		t.Error("Expected error for missing theme")
	}
}

func TestListThemes(t *testing.T) {
	dir := t.TempDir()
	writeThemeFile(t, dir, "scifi", themeJSON)
	writeThemeFile(t, dir, "fantasy", themeJSON)
	writeThemeFile(t, dir, "broken", "{not json")
	store := testThemeStore(t, dir)

	themes, err := store.ListThemes(context.Background())
	if err != nil {
		t.Fatalf("Failed to list themes: %v", err)
	}
	if len(themes) != 2 {
		t.Fatalf("Expected 2 readable themes, got %d", len(themes))
	}
	if themes[0].ID != "fantasy" || themes[1].ID != "scifi" {
		t.Errorf("Expected sorted IDs [fantasy scifi], got [%s %s]", themes[0].ID, themes[1].ID)
	}
}

func TestListThemes_MissingDir(t *testing.T) {
	store := testThemeStore(t, filepath.Join(t.TempDir(), "nope"))

	themes, err := store.ListThemes(context.Background())
	if err != nil {
		t.Fatalf("Expected no error for missing directory, got: %v", err)
	}
	if len(themes) != 0 {
		t.Errorf("Expected empty list, got %d", len(themes))
	}
}
