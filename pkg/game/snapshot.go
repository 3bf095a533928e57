package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/consensuslabs/chronicle/pkg/participant"
	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/story"
)

// Snapshot is a point-in-time copy of the session's visible state,
// suitable for rendering without holding the session lock.
type Snapshot struct {
	Phase       Phase
	Round       int
	TotalRounds int
	Remaining   time.Duration

	ThemeID   string
	ThemeName string
	ThemeIcon string

	Members []*participant.Participant
	Votes   map[uuid.UUID]story.Branch
	CountA  int
	CountB  int

	OptionA *story.Option
	OptionB *story.Option

	Path       []story.Branch
	Transcript []TranscriptEntry
	Feed       []Message
	Scores     map[uuid.UUID]score.Record
	LastResult *RoundResult
	LastReward int

	HumanID    uuid.UUID
	HumanVoted bool
	Balance    int
}

// Snapshot copies the state a renderer needs.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:      s.phase,
		Round:      s.round,
		Balance:    s.profile.Balance,
		LastReward: s.lastReward,
	}
	if s.theme != nil {
		snap.TotalRounds = s.theme.TotalRounds()
		snap.ThemeID = s.theme.ID
		snap.ThemeName = s.theme.Name
		snap.ThemeIcon = s.theme.Icon
	}
	if !s.deadline.IsZero() {
		if rem := time.Until(s.deadline); rem > 0 {
			snap.Remaining = rem
		}
	}
	if s.registry != nil {
		snap.Members = s.registry.Members()
	}
	if s.human != nil {
		snap.HumanID = s.human.ID
	}
	if s.votes != nil {
		snap.Votes = make(map[uuid.UUID]story.Branch, len(s.votes))
		for id, v := range s.votes {
			snap.Votes[id] = v
		}
		snap.CountA, snap.CountB = s.tallyLocked()
		if s.human != nil {
			_, snap.HumanVoted = s.votes[s.human.ID]
		}
	}
	if s.roundDef != nil {
		a, b := s.roundDef.OptionA, s.roundDef.OptionB
		snap.OptionA, snap.OptionB = &a, &b
	}
	snap.Path = append([]story.Branch(nil), s.path...)
	snap.Transcript = append([]TranscriptEntry(nil), s.transcript...)
	snap.Feed = append([]Message(nil), s.feed...)
	if s.board != nil && s.registry != nil {
		snap.Scores = make(map[uuid.UUID]score.Record)
		for _, p := range s.registry.Members() {
			snap.Scores[p.ID] = s.board.Get(p.ID)
		}
	}
	if s.lastResult != nil {
		r := *s.lastResult
		snap.LastResult = &r
	}
	return snap
}
