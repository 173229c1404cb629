package matching

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var punctuation = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"me": {}, "him": {}, "her": {}, "us": {}, "them": {},
	"my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {},
}

// ExtractKeywords lowercases text, treats punctuation as whitespace and
// returns the distinct tokens longer than two characters that are not stop
// words, in order of first appearance.
func ExtractKeywords(text string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), " ")

	var keywords []string
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two keyword sets. Either set being
// empty yields 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inA := make(map[string]struct{}, len(a))
	for _, w := range a {
		inA[w] = struct{}{}
	}
	union := len(inA)
	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, w := range b {
		if _, dup := counted[w]; dup {
			continue
		}
		counted[w] = struct{}{}
		if _, ok := inA[w]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}
