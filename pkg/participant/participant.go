package participant

import (
	"math/rand"

	"github.com/google/uuid"
)

// Participant is a room member. Identity fields are set once at join time
// and never mutated afterward.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	Simulated bool      `json:"simulated,omitempty"`
	// Style selects the behavior profile driving a simulated member's
	// commentary and votes. Empty for humans.
	Style string `json:"style,omitempty"`
}

// NewHuman creates a human participant with the given display identity.
func NewHuman(name, avatar string) *Participant {
	return &Participant{
		ID:     uuid.New(),
		Name:   name,
		Avatar: avatar,
	}
}

// Registry is the ordered set of members in a room.
type Registry struct {
	members []*Participant
	byID    map[uuid.UUID]*Participant
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*Participant)}
}

// Add appends p to the registry. Duplicate IDs are ignored.
func (r *Registry) Add(p *Participant) bool {
	if _, ok := r.byID[p.ID]; ok {
		return false
	}
	r.members = append(r.members, p)
	r.byID[p.ID] = p
	return true
}

// Get returns the member with the given id, or nil.
func (r *Registry) Get(id uuid.UUID) *Participant {
	return r.byID[id]
}

// Len returns the number of members.
func (r *Registry) Len() int {
	return len(r.members)
}

// Members returns the members in join order. The returned slice is a copy;
// the participants themselves are shared.
func (r *Registry) Members() []*Participant {
	out := make([]*Participant, len(r.members))
	copy(out, r.members)
	return out
}

// Simulated returns the simulated members in join order.
func (r *Registry) Simulated() []*Participant {
	var out []*Participant
	for _, p := range r.members {
		if p.Simulated {
			out = append(out, p)
		}
	}
	return out
}

// roster is the built-in cast of simulated participants.
var roster = []Participant{
	{Name: "Sage Iris", Avatar: "🧙", Style: "analytical"},
	{Name: "Knight Kane", Avatar: "⚔️", Style: "bold"},
	{Name: "Scholar Noah", Avatar: "📚", Style: "cautious"},
	{Name: "Merchant Marco", Avatar: "💰", Style: "pragmatic"},
	{Name: "Poet Luna", Avatar: "🎭", Style: "romantic"},
}

// Roster returns a shuffled batch of n simulated participants drawn from
// the built-in cast, each with a fresh identity. n is clamped to the cast
// size.
func Roster(n int, rng *rand.Rand) []*Participant {
	if n > len(roster) {
		n = len(roster)
	}
	idx := rng.Perm(len(roster))
	out := make([]*Participant, 0, n)
	for _, i := range idx[:n] {
		p := roster[i]
		p.ID = uuid.New()
		p.Simulated = true
		out = append(out, &p)
	}
	return out
}
