package story

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// fillerWords are dropped during normalization so keyword matching sees the
// content words. Very short descriptions keep them, since dropping words from
// a three-word input can empty it.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// Normalize prepares a feature description for matching:
// 1. Trim leading/trailing whitespace
// 2. Lowercase
// 3. Collapse internal whitespace to single spaces
// 4. Drop filler words (unless the description has 3 words or fewer)
//
// The result is used only for classification and extraction; it is never
// returned to the caller.
func Normalize(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	s = whitespaceRegex.ReplaceAllString(s, " ")

	words := strings.Split(s, " ")
	if len(words) <= 3 {
		return s
	}

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !fillerWords[w] {
			filtered = append(filtered, w)
		}
	}
	return strings.Join(filtered, " ")
}

// CountWords returns the number of whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
