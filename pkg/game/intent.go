package game

import (
	"strings"

	"github.com/consensuslabs/chronicle/pkg/story"
)

// IntentUnknown is returned when commentary does not clearly favor one
// branch.
const IntentUnknown story.Branch = ""

// IntentExtractor infers which branch a line of free-text commentary
// argues for. Implementations must return IntentUnknown rather than guess
// when the text is ambiguous.
type IntentExtractor interface {
	Extract(text string) story.Branch
}

// TokenIntentExtractor applies the documented rule: commentary mentioning
// the standalone token "A" favors A, "B" favors B, and anything else
// (including text naming both) is unknown.
type TokenIntentExtractor struct{}

func (TokenIntentExtractor) Extract(text string) story.Branch {
	hasA := containsToken(text, "A")
	hasB := containsToken(text, "B")
	switch {
	case hasA && !hasB:
		return story.BranchA
	case hasB && !hasA:
		return story.BranchB
	default:
		return IntentUnknown
	}
}

func containsToken(text, token string) bool {
	for _, f := range strings.Fields(strings.ToUpper(text)) {
		if strings.Trim(f, ".,!?:;\"'()") == token {
			return true
		}
	}
	return false
}
