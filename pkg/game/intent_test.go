package game_test

import (
	"testing"

	"github.com/consensuslabs/chronicle/pkg/game"
	"github.com/consensuslabs/chronicle/pkg/story"
)

func TestTokenIntentExtractor(t *testing.T) {
	tests := []struct {
		text string
		want story.Branch
	}{
		{"I vote A", story.BranchA},
		{"definitely a!", story.BranchA},
		{"Option B is safer.", story.BranchB},
		{"(b)", story.BranchB},
		{"A is risky but B is dull", game.IntentUnknown},
		// The article "a" still counts as a token; that is the rule.
		{"a banana beats an apple", story.BranchA},
		{"no preference here", game.IntentUnknown},
		{"", game.IntentUnknown},
	}
	var ex game.TokenIntentExtractor
	for _, tc := range tests {
		if got := ex.Extract(tc.text); got != tc.want {
			t.Errorf("Extract(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
