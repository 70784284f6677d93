package story

import "strings"

// fibonacciPoints is the allowed story-point scale.
var fibonacciPoints = map[int]bool{1: true, 2: true, 3: true, 5: true, 8: true, 13: true}

// EstimateEffort maps a normalized description and its feature type to a
// Fibonacci story-point value. The base effort for the type is raised by the
// sum of all matching complexity bonuses (additive, uncapped), and the total
// is fitted to the scale: a total that already is a Fibonacci value stands,
// anything else buckets to the threshold table. Deterministic, no failure
// modes; unknown types estimate like general.
func EstimateEffort(normalized string, ft FeatureType) int {
	base, ok := baseEfforts[ft]
	if !ok {
		base = 3
	}

	total := base
	for _, p := range complexityTable {
		if strings.Contains(normalized, p.keyword) {
			total += p.bonus
		}
	}

	if fibonacciPoints[total] {
		return total
	}

	switch {
	case total <= 2:
		return 1
	case total <= 4:
		return 2
	case total <= 6:
		return 3
	case total <= 10:
		return 5
	case total <= 15:
		return 8
	}
	return 13
}
