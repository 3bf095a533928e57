package score

import (
	"github.com/google/uuid"
)

// Record tracks one participant's scoring across a session. Both counters
// only ever increase.
type Record struct {
	// Influence is earned by voting with the round's winning branch.
	Influence int `json:"influence"`
	// Participation is earned by contributing debate commentary.
	Participation int `json:"participation"`
	// Wins counts rounds where the participant voted with the winner.
	Wins int `json:"wins"`
}

// Total is the participant's score: influence plus participation.
func (r *Record) Total() int {
	return r.Influence + r.Participation
}

// Board holds the score records for a session, keyed by participant.
type Board struct {
	records map[uuid.UUID]*Record
}

func NewBoard() *Board {
	return &Board{records: make(map[uuid.UUID]*Record)}
}

// Enroll ensures a record exists for the participant.
func (b *Board) Enroll(id uuid.UUID) {
	if _, ok := b.records[id]; !ok {
		b.records[id] = &Record{}
	}
}

// Get returns the participant's record, or a zero record if never enrolled.
func (b *Board) Get(id uuid.UUID) Record {
	if r, ok := b.records[id]; ok {
		return *r
	}
	return Record{}
}

// AddInfluence credits winning-vote influence and a win. Negative amounts
// are ignored so counters stay monotonic.
func (b *Board) AddInfluence(id uuid.UUID, amount int) {
	if amount < 0 {
		return
	}
	b.Enroll(id)
	b.records[id].Influence += amount
	b.records[id].Wins++
}

// AddParticipation credits debate participation. Negative amounts are
// ignored.
func (b *Board) AddParticipation(id uuid.UUID, amount int) {
	if amount < 0 {
		return
	}
	b.Enroll(id)
	b.records[id].Participation += amount
}
