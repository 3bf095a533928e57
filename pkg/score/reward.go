package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Retention caps for the persisted logs. Storage implementations evict the
// oldest history entries and the lowest-ranked leaderboard entries beyond
// these.
const (
	HistoryLimit     = 30
	LeaderboardLimit = 15
)

// Profile is the player's persistent identity and currency state. It is
// read at startup (with a default), debited at room creation, and credited
// at game end.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Avatar         string    `json:"avatar,omitempty"`
	Balance        int       `json:"balance"`
	LifetimeEarned int       `json:"lifetime_earned"`
}

// HistoryEntry is one finished game in the player's record, most recent
// first.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	ThemeID   string    `json:"theme_id"`
	ThemeName string    `json:"theme_name"`
	Timestamp time.Time `json:"timestamp"`
	Points    int       `json:"points"`
	Reward    int       `json:"reward"`
	Fee       int       `json:"fee"`
	Net       int       `json:"net"`
}

// LeaderboardEntry is one scored game on the global board, sorted
// descending by points.
type LeaderboardEntry struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Avatar  string    `json:"avatar,omitempty"`
	Points  int       `json:"points"`
	ThemeID string    `json:"theme_id"`
}

// Reward converts a final score into the currency payout.
func Reward(points, baseReward int) int {
	return baseReward + points/2
}

// Sink is the slice of storage the engine settles into. Satisfied by
// storage.Storage.
type Sink interface {
	SaveProfile(ctx context.Context, p *Profile) error
	AppendHistory(ctx context.Context, e HistoryEntry) error
	RecordScore(ctx context.Context, e LeaderboardEntry) error
}

// Engine converts the human player's final record into a reward and
// persists the results. It is a pure function of the record plus the
// current persisted state; incomplete sessions (paths shorter than the
// full round count) settle the same way.
type Engine struct {
	sink       Sink
	baseReward int
	entryFee   int
}

func NewEngine(sink Sink, baseReward, entryFee int) *Engine {
	return &Engine{sink: sink, baseReward: baseReward, entryFee: entryFee}
}

// Settle computes the reward for rec, credits the profile, and appends
// history and leaderboard entries. The profile is mutated in place before
// being saved.
func (e *Engine) Settle(ctx context.Context, profile *Profile, rec Record, themeID, themeName string) (int, error) {
	points := rec.Total()
	reward := Reward(points, e.baseReward)

	profile.Balance += reward
	profile.LifetimeEarned += reward
	if err := e.sink.SaveProfile(ctx, profile); err != nil {
		return reward, fmt.Errorf("failed to credit profile: %w", err)
	}

	if err := e.sink.AppendHistory(ctx, HistoryEntry{
		ID:        uuid.New(),
		ThemeID:   themeID,
		ThemeName: themeName,
		Timestamp: time.Now(),
		Points:    points,
		Reward:    reward,
		Fee:       e.entryFee,
		Net:       reward - e.entryFee,
	}); err != nil {
		return reward, fmt.Errorf("failed to append history: %w", err)
	}

	if err := e.sink.RecordScore(ctx, LeaderboardEntry{
		ID:      uuid.New(),
		Name:    profile.Name,
		Avatar:  profile.Avatar,
		Points:  points,
		ThemeID: themeID,
	}); err != nil {
		return reward, fmt.Errorf("failed to record leaderboard entry: %w", err)
	}

	return reward, nil
}
