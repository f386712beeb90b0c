package service

import "strings"

// ordinalReplacements is applied in order. Matching is plain substring
// replacement, so "firstname" becomes "1name"; extraction tolerates that.
var ordinalReplacements = []struct {
	word  string
	digit string
}{
	{"first", "1"}, {"1st", "1"},
	{"second", "2"}, {"2nd", "2"},
	{"third", "3"}, {"3rd", "3"},
	{"fourth", "4"}, {"4th", "4"},
	{"fifth", "5"}, {"5th", "5"},
	{"sixth", "6"}, {"6th", "6"},
}

// NormalizeQuery lower-cases the utterance and rewrites ordinal words into
// digits before it is sent for criteria extraction.
func NormalizeQuery(text string) string {
	normalized := strings.ToLower(text)
	for _, r := range ordinalReplacements {
		normalized = strings.ReplaceAll(normalized, r.word, r.digit)
	}
	return normalized
}
