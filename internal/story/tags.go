package story

import "strings"

// GenerateTags derives descriptive tags from a feature description: the
// story-type tag first, then one tag per matching technology keyword in
// table order. Duplicates are removed while preserving first-seen order, so
// the result is deterministic for a given input.
func GenerateTags(description string, storyType Type) []string {
	lower := strings.ToLower(description)

	seen := make(map[string]bool)
	tags := make([]string, 0, len(tagTable)+1)

	appendTag := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	appendTag(string(storyType))
	for _, p := range tagTable {
		if strings.Contains(lower, p.keyword) {
			appendTag(p.tag)
		}
	}

	return tags
}
