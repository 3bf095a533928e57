// Package textfilter keeps the shared room feed family-friendly by
// masking profanity in player commentary before it is displayed.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps masked words to their displayed alternatives.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"prick":        "jerk",
	"dick":         "jerk",
	"dickhead":     "jerk",
	"goddamn":      "gosh-dang",
	"bullshit":     "baloney",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"douchebag":    "jerk",
	"shithead":     "jerk",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"motherfucker": "mother-trucker",
}

// Filter masks profanity in commentary text, preserving the case shape of
// each replaced word.
type Filter struct {
	patterns map[string]*regexp.Regexp
}

// New compiles the word patterns once; the filter is safe for concurrent
// use afterward.
func New() *Filter {
	f := &Filter{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Clean returns text with every masked word replaced.
func (f *Filter) Clean(text string) string {
	result := text
	for word, replacement := range replacements {
		result = f.patterns[word].ReplaceAllStringFunc(result, func(match string) string {
			return matchCase(match, replacement)
		})
	}
	return result
}

// Contains reports whether text holds any masked word.
func (f *Filter) Contains(text string) bool {
	for _, pattern := range f.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// matchCase shapes replacement to the case pattern of original: all-upper,
// all-lower, and title case are matched exactly; anything else is shaped
// character by character.
func matchCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	title := cases.Title(language.English)
	if title.String(strings.ToLower(original)) == original {
		return title.String(replacement)
	}

	src := []rune(original)
	out := make([]rune, 0, len(replacement))
	for i, r := range []rune(replacement) {
		if i < len(src) && unicode.IsUpper(src[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
