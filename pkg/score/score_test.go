package score

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestReward(t *testing.T) {
	// influence=40, participation=15 => points=55 => base + 27
	rec := Record{Influence: 40, Participation: 15}
	if rec.Total() != 55 {
		t.Fatalf("Expected total 55, got %d", rec.Total())
	}
	if got := Reward(rec.Total(), 50); got != 77 {
		t.Errorf("Expected reward 77, got %d", got)
	}
	if got := Reward(0, 50); got != 50 {
		t.Errorf("Zero points should earn the base reward, got %d", got)
	}
}

func TestBoard_MonotonicCounters(t *testing.T) {
	b := NewBoard()
	id := uuid.New()

	b.AddInfluence(id, 20)
	b.AddParticipation(id, 5)
	b.AddInfluence(id, -100)
	b.AddParticipation(id, -100)

	rec := b.Get(id)
	if rec.Influence != 20 || rec.Participation != 5 {
		t.Errorf("Negative credits must not decrease counters: %+v", rec)
	}
	if rec.Wins != 1 {
		t.Errorf("Expected 1 win, got %d", rec.Wins)
	}
}

func TestBoard_UnenrolledIsZero(t *testing.T) {
	b := NewBoard()
	rec := b.Get(uuid.New())
	if rec.Influence != 0 || rec.Participation != 0 || rec.Wins != 0 {
		t.Errorf("Expected zero record, got %+v", rec)
	}
}

type captureSink struct {
	profile     *Profile
	history     []HistoryEntry
	leaderboard []LeaderboardEntry
}

func (c *captureSink) SaveProfile(_ context.Context, p *Profile) error {
	cp := *p
	c.profile = &cp
	return nil
}

func (c *captureSink) AppendHistory(_ context.Context, e HistoryEntry) error {
	c.history = append([]HistoryEntry{e}, c.history...)
	return nil
}

func (c *captureSink) RecordScore(_ context.Context, e LeaderboardEntry) error {
	c.leaderboard = append(c.leaderboard, e)
	return nil
}

func TestEngine_Settle(t *testing.T) {
	sink := &captureSink{}
	engine := NewEngine(sink, 50, 10)

	profile := &Profile{ID: uuid.New(), Name: "Ada", Balance: 90, LifetimeEarned: 0}
	rec := Record{Influence: 40, Participation: 15}

	reward, err := engine.Settle(context.Background(), profile, rec, "fantasy", "Fantasy Quest")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if reward != 77 {
		t.Errorf("Expected reward 77, got %d", reward)
	}
	if profile.Balance != 167 || profile.LifetimeEarned != 77 {
		t.Errorf("Profile not credited: %+v", profile)
	}
	if sink.profile == nil || sink.profile.Balance != 167 {
		t.Error("Credited profile was not persisted")
	}

	if len(sink.history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(sink.history))
	}
	h := sink.history[0]
	if h.Points != 55 || h.Reward != 77 || h.Fee != 10 || h.Net != 67 {
		t.Errorf("History entry wrong: %+v", h)
	}

	if len(sink.leaderboard) != 1 || sink.leaderboard[0].Points != 55 {
		t.Errorf("Leaderboard entry wrong: %+v", sink.leaderboard)
	}
}

func TestEngine_SettleZeroRecord(t *testing.T) {
	// An aborted session settles a zero record without error.
	sink := &captureSink{}
	engine := NewEngine(sink, 50, 10)
	profile := &Profile{ID: uuid.New(), Name: "Ada", Balance: 90}

	reward, err := engine.Settle(context.Background(), profile, Record{}, "scifi", "Stellar Crisis")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if reward != 50 || profile.Balance != 140 {
		t.Errorf("Expected base reward credit, got reward=%d balance=%d", reward, profile.Balance)
	}
}
