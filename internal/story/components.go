package story

import "strings"

// ExtractComponents derives the role, action, benefit, and feature name from
// a normalized description. Every field resolves to a non-empty string via
// the default fallbacks; there are no error conditions.
func ExtractComponents(normalized string, ft FeatureType) Components {
	return Components{
		Role:        extractRole(normalized),
		Action:      extractAction(normalized),
		Benefit:     extractBenefit(normalized),
		FeatureName: extractFeatureName(normalized, ft),
		FeatureType: ft,
	}
}

// extractRole returns the first role whose keyword appears in the
// description, defaulting to "user".
func extractRole(normalized string) string {
	for _, p := range roleTable {
		if strings.Contains(normalized, p.keyword) {
			return p.role
		}
	}
	return "user"
}

// extractAction finds the first action verb and combines it with up to the
// next two words as the object phrase. With no verb present it falls back to
// "use <first word>" or "use the system".
func extractAction(normalized string) string {
	words := strings.Fields(normalized)

	for i, w := range words {
		if !actionVerbs[w] {
			continue
		}
		end := min(i+3, len(words))
		return strings.TrimSpace(strings.Join(words[i:end], " "))
	}

	if len(words) > 0 {
		return "use " + words[0]
	}
	return "use the system"
}

// extractBenefit matches the benefit table first, then falls back to verb-
// class heuristics, then to a generic phrase.
func extractBenefit(normalized string) string {
	for _, p := range benefitTable {
		if strings.Contains(normalized, p.keyword) {
			return p.benefit
		}
	}

	switch {
	case containsAny(normalized, "create", "add", "new"):
		return "easily add new information to the system"
	case containsAny(normalized, "update", "edit", "modify"):
		return "keep my information current and accurate"
	case containsAny(normalized, "view", "see", "display"):
		return "access the information I need"
	}
	return "accomplish my goals efficiently"
}

// extractFeatureName uses the catalog display name when the type has one,
// otherwise title-cases the first three words of the description.
func extractFeatureName(normalized string, ft FeatureType) string {
	if entry := CatalogEntryFor(ft); entry != nil {
		return entry.DisplayName
	}

	words := strings.Fields(normalized)
	if len(words) > 3 {
		words = words[:3]
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	if len(words) == 0 {
		return "General Feature"
	}
	return strings.Join(words, " ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
