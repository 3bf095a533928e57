package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/consensuslabs/chronicle/internal/config"
	"github.com/consensuslabs/chronicle/internal/logger"
	"github.com/consensuslabs/chronicle/internal/storage"
	"github.com/consensuslabs/chronicle/pkg/game"
	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/textfilter"
)

const defaultPlayerName = "Wanderer"

func main() {
	cfg := config.Load()

	// The terminal belongs to the UI, so logs go to a file.
	logPath := filepath.Join(os.TempDir(), "chronicle.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s.\nTry: docker-compose up -d\n", cfg.RedisURL)
		os.Exit(1)
	}

	profile, err := loadOrCreateProfile(ctx, store, cfg.PlayerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load player profile: %v\n", err)
		os.Exit(1)
	}

	themes, err := store.ListThemes(ctx)
	if err != nil || len(themes) == 0 {
		fmt.Fprintf(os.Stderr, "No themes found under %s/themes: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	session := game.NewSession(game.DefaultConfig(), profile, game.Deps{
		Store:  store,
		Logger: log,
		Filter: textfilter.New().Clean,
	})

	p := tea.NewProgram(NewChronicleUI(session, store, themes),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadOrCreateProfile fetches the persisted player profile, creating one
// with the starting balance on first run.
func loadOrCreateProfile(ctx context.Context, store *storage.RedisStorage, name string) (*score.Profile, error) {
	profile, err := store.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if name != "" && profile.Name != name {
			profile.Name = name
			if err := store.SaveProfile(ctx, profile); err != nil {
				return nil, err
			}
		}
		return profile, nil
	}

	if name == "" {
		name = defaultPlayerName
	}
	profile = &score.Profile{
		ID:      uuid.New(),
		Name:    name,
		Avatar:  "🎮",
		Balance: game.DefaultConfig().StartingBalance,
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
