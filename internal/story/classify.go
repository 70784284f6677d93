package story

import "strings"

// DetectFeatureType scores the normalized description against each catalog
// entry's keyword set and returns the best match. Every keyword found as a
// substring counts one point; the highest non-zero score wins, with ties
// going to the earlier catalog entry. A zero score across the board returns
// FeatureGeneral. Always returns a valid type.
func DetectFeatureType(normalized string) FeatureType {
	best := FeatureGeneral
	bestScore := 0

	for _, entry := range catalog {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(normalized, kw) {
				score++
			}
		}
		if score > bestScore {
			best = entry.Type
			bestScore = score
		}
	}

	return best
}
