package story

import (
	"fmt"
	"strings"
)

// Branch identifies one of the two options in a round.
type Branch string

const (
	BranchA Branch = "A"
	BranchB Branch = "B"
)

// Valid reports whether b is one of the two recognized branches.
func (b Branch) Valid() bool {
	return b == BranchA || b == BranchB
}

// Other returns the opposing branch.
func (b Branch) Other() Branch {
	if b == BranchA {
		return BranchB
	}
	return BranchA
}

// PathString renders a story path as a compact string, e.g. "AAB".
func PathString(path []Branch) string {
	var sb strings.Builder
	for _, b := range path {
		sb.WriteString(string(b))
	}
	return sb.String()
}

// Option is one of the two choices offered in a round.
type Option struct {
	Tag  string `json:"tag"`  // short label, e.g. "Aggressive"
	Text string `json:"text"` // the choice as presented to players

	// Consequence is the default outcome line when the option wins.
	Consequence string `json:"consequence,omitempty"`
	// ConsequenceFrom holds outcome lines keyed by the previous round's
	// winning branch, taking precedence over Consequence.
	ConsequenceFrom map[Branch]string `json:"consequence_from,omitempty"`
	// Ending is the closing line for final-round options.
	Ending string `json:"ending,omitempty"`
}

// RoundDef is one round of a theme's story tree.
type RoundDef struct {
	// Context is the default scene-setting line, used at round 1 or when
	// no variant matches the path.
	Context string `json:"context"`
	// Contexts holds variants keyed by a suffix of the winning-branch
	// path ("A", "B", "AA", "AB", ...). Longest matching suffix wins.
	Contexts map[string]string `json:"contexts,omitempty"`

	OptionA Option `json:"a"`
	OptionB Option `json:"b"`
}

// Option returns the round's option for the given branch.
func (rd *RoundDef) Option(b Branch) *Option {
	if b == BranchA {
		return &rd.OptionA
	}
	return &rd.OptionB
}

// Theme is a selectable narrative setting: an opening line plus a fixed
// sequence of rounds. Themes are loaded once at startup and treated as
// read-only afterward.
type Theme struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Icon    string     `json:"icon,omitempty"`
	Desc    string     `json:"desc,omitempty"`
	Opening string     `json:"opening"`
	Rounds  []RoundDef `json:"rounds"`
}

// ErrNoRound is returned when a round index falls outside the theme's
// story tree. Callers treat it as "story exhausted" rather than a fault.
var ErrNoRound = fmt.Errorf("story: no round definition")

// Round resolves the definition for round r (1-based) against the
// accumulated winning-branch path. The returned context is chosen by the
// longest-available-suffix rule: the last two branches of the path, then
// the last one, then the default. An empty path always yields the default.
// The lookup is deterministic in (r, path).
func (t *Theme) Round(r int, path []Branch) (*RoundDef, string, error) {
	if r < 1 || r > len(t.Rounds) {
		return nil, "", fmt.Errorf("%w: theme %q round %d", ErrNoRound, t.ID, r)
	}
	rd := &t.Rounds[r-1]

	ctx := rd.Context
	if r > 1 && len(path) > 0 && len(rd.Contexts) > 0 {
		start := len(path) - 2
		if start < 0 {
			start = 0
		}
		for ; start < len(path); start++ {
			if v, ok := rd.Contexts[PathString(path[start:])]; ok {
				ctx = v
				break
			}
		}
	}
	return rd, ctx, nil
}

// Outcome resolves the narrative line produced when winner takes round r.
// A consequence keyed by the previous winning branch takes precedence;
// otherwise the final round prefers its ending, and every round falls back
// to the default consequence.
func (t *Theme) Outcome(r int, winner Branch, path []Branch) (string, error) {
	if r < 1 || r > len(t.Rounds) {
		return "", fmt.Errorf("%w: theme %q round %d", ErrNoRound, t.ID, r)
	}
	opt := t.Rounds[r-1].Option(winner)
	if len(path) > 0 {
		if line, ok := opt.ConsequenceFrom[path[len(path)-1]]; ok {
			return line, nil
		}
	}
	if r == len(t.Rounds) && opt.Ending != "" {
		return opt.Ending, nil
	}
	return opt.Consequence, nil
}

// coveredByVariants reports whether a round with no default context can
// still resolve for every possible path: both one-branch suffixes, or (from
// round 3 on) all four two-branch suffixes.
func coveredByVariants(rd *RoundDef, i int) bool {
	if i == 0 {
		return false
	}
	if rd.Contexts[string(BranchA)] != "" && rd.Contexts[string(BranchB)] != "" {
		return true
	}
	if i >= 2 {
		for _, key := range []string{"AA", "AB", "BA", "BB"} {
			if rd.Contexts[key] == "" {
				return false
			}
		}
		return true
	}
	return false
}

// TotalRounds returns the number of rounds in the theme's tree.
func (t *Theme) TotalRounds() int {
	return len(t.Rounds)
}

// Validate checks structural rules for a loaded theme: a non-empty id and
// opening, the expected round count when want > 0, both options present in
// every round, valid context variant keys, and endings on the final round.
func (t *Theme) Validate(want int) error {
	if t.ID == "" {
		return fmt.Errorf("theme missing id")
	}
	if t.Opening == "" {
		return fmt.Errorf("theme %q missing opening", t.ID)
	}
	if want > 0 && len(t.Rounds) != want {
		return fmt.Errorf("theme %q has %d rounds, want %d", t.ID, len(t.Rounds), want)
	}
	for i := range t.Rounds {
		rd := &t.Rounds[i]
		if rd.Context == "" && !coveredByVariants(rd, i) {
			return fmt.Errorf("theme %q round %d missing default context", t.ID, i+1)
		}
		for key := range rd.Contexts {
			for _, c := range key {
				if Branch(c) != BranchA && Branch(c) != BranchB {
					return fmt.Errorf("theme %q round %d has invalid context key %q", t.ID, i+1, key)
				}
			}
			if len(key) == 0 || len(key) > 2 {
				return fmt.Errorf("theme %q round %d has invalid context key %q", t.ID, i+1, key)
			}
		}
		for _, b := range []Branch{BranchA, BranchB} {
			opt := rd.Option(b)
			if opt.Text == "" || opt.Tag == "" {
				return fmt.Errorf("theme %q round %d option %s missing text or tag", t.ID, i+1, b)
			}
			last := i == len(t.Rounds)-1
			if last && opt.Ending == "" {
				return fmt.Errorf("theme %q final round option %s missing ending", t.ID, b)
			}
			if !last && opt.Ending != "" {
				return fmt.Errorf("theme %q round %d option %s has ending before final round", t.ID, i+1, b)
			}
			if opt.Consequence == "" && len(opt.ConsequenceFrom) == 0 && !last {
				return fmt.Errorf("theme %q round %d option %s has no outcome line", t.ID, i+1, b)
			}
		}
	}
	return nil
}
