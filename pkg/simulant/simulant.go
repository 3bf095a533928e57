// Package simulant generates votes and debate commentary for simulated
// participants. The Round Controller treats it as a black box: one call
// yields a leaning and a line of commentary matching the member's style.
package simulant

import (
	"math/rand"

	"github.com/consensuslabs/chronicle/pkg/story"
)

// Take is a simulated participant's position on the current round: a
// leaning toward one branch and a line of commentary arguing for it.
type Take struct {
	Text    string
	Leaning story.Branch
}

// Generator produces a Take for a behavior style. Implementations must be
// safe for use from timer callbacks.
type Generator interface {
	Take(style string) Take
}

// lines maps behavior style -> leaning -> candidate commentary.
var lines = map[string]map[story.Branch][]string{
	"analytical": {
		story.BranchA: {"Logically, A has the higher success rate.", "The numbers favor decisive action. A."},
		story.BranchB: {"Analysis shows B offers better long-term value.", "B is the more prudent play overall."},
	},
	"bold": {
		story.BranchA: {"Fortune favors the bold! A!", "Strike now! A!"},
		story.BranchB: {"True courage means B!", "B takes real bravery!"},
	},
	"cautious": {
		story.BranchA: {"Risky, but A may be necessary.", "Lesser evil. I support A."},
		story.BranchB: {"For safety's sake, B is wiser.", "Steady progress. B."},
	},
	"pragmatic": {
		story.BranchA: {"The return favors A.", "A simply pays more."},
		story.BranchB: {"B keeps the risk contained.", "B is the sensible trade."},
	},
	"romantic": {
		story.BranchA: {"There is a tragic beauty in A.", "Let A become legend."},
		story.BranchB: {"B carries all our hope.", "B moves me the most."},
	},
}

// RandomGenerator picks a leaning uniformly between the two branches and a
// style-appropriate line for it. Unknown styles fall back to analytical.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator builds a generator around the given random source.
// The source is seedable so tests can force deterministic takes.
func NewRandomGenerator(rng *rand.Rand) *RandomGenerator {
	return &RandomGenerator{rng: rng}
}

func (g *RandomGenerator) Take(style string) Take {
	leaning := story.BranchA
	if g.rng.Intn(2) == 1 {
		leaning = story.BranchB
	}
	byLeaning, ok := lines[style]
	if !ok {
		byLeaning = lines["analytical"]
	}
	opts := byLeaning[leaning]
	return Take{
		Text:    opts[g.rng.Intn(len(opts))],
		Leaning: leaning,
	}
}
