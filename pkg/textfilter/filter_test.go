package textfilter

import "testing"

func TestClean(t *testing.T) {
	f := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text untouched", "I vote A, the bold path", "I vote A, the bold path"},
		{"lowercase word", "that plan is shit", "that plan is shoot"},
		{"uppercase word", "DAMN that dragon", "DANG that dragon"},
		{"title case word", "Hell of a choice", "Heck of a choice"},
		{"word boundary respected", "classic assessment", "classic assessment"},
		{"multiple words", "damn this crap plan", "dang this crud plan"},
		{"mid-sentence punctuation", "what the hell?", "what the heck?"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Clean(tc.input); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	f := New()

	if !f.Contains("utter bullshit") {
		t.Error("Expected profanity to be detected")
	}
	if f.Contains("a perfectly polite argument") {
		t.Error("Expected clean text to pass")
	}
	if f.Contains("assessment of the passage") {
		t.Error("Substrings inside larger words must not match")
	}
}
