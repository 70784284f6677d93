package story

import (
	"strings"
	"time"
)

// AnalyzeQuality runs the validator over a Gherkin document and folds the
// findings into a 0..1 score with completeness heuristics. Every validator
// issue deducts 0.1 from a baseline of 1.0; two or more scenarios earn a
// 0.1 bonus; the result is clamped to [0, 1].
//
// The has_given_when_then completeness check is a whole-document substring
// test, coarser than the validator's per-scenario scan. Both signals are
// reported.
func AnalyzeQuality(content string) QualityMetrics {
	result := ValidateGherkin(content)
	lines := strings.Split(content, "\n")

	scenarioCount := 0
	lineCount := 0
	hasUserStory := false
	hasFeatureLine := false
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped != "" {
			lineCount++
		}
		if strings.HasPrefix(stripped, "Scenario:") {
			scenarioCount++
		}
		if strings.Contains(line, "Feature:") {
			hasFeatureLine = true
		}
		if strings.Contains(line, "As a") {
			hasUserStory = true
		}
	}

	score := 1.0 - float64(len(result.Issues))*0.1
	if scenarioCount >= 2 {
		score += 0.1
	}
	score = max(0.0, min(1.0, score))

	issues := result.Issues
	if issues == nil {
		issues = []string{}
	}

	return QualityMetrics{
		QualityScore:   score,
		IsValidGherkin: result.Valid,
		SyntaxIssues:   issues,
		ScenarioCount:  scenarioCount,
		LineCount:      lineCount,
		Completeness: map[string]bool{
			"has_feature":    hasFeatureLine,
			"has_user_story": hasUserStory,
			"has_scenarios":  scenarioCount > 0,
			"has_given_when_then": strings.Contains(content, "Given") &&
				strings.Contains(content, "When") &&
				strings.Contains(content, "Then"),
		},
		AnalyzedAt: time.Now().Unix(),
	}
}

// Suggestions inspects a feature description (not Gherkin) and returns
// improvement hints. Heuristics flag short descriptions, missing roles,
// missing intent, and a few domain-specific gaps; when nothing triggers,
// three generic suggestions are returned. Never empty.
func Suggestions(description string) []string {
	var suggestions []string
	lower := strings.ToLower(description)

	if CountWords(description) < 5 {
		suggestions = append(suggestions, "Consider providing more detail about the feature requirements")
	}

	if !containsAny(lower, "user", "admin", "customer", "developer") {
		suggestions = append(suggestions, "Specify who will be using this feature (user role)")
	}

	if !containsAny(lower, "should", "must", "need", "want", "require") {
		suggestions = append(suggestions, "Include what the feature should accomplish or enable")
	}

	if strings.Contains(lower, "authentication") && !strings.Contains(lower, "security") {
		suggestions = append(suggestions, "Consider mentioning security requirements for authentication features")
	}

	if containsAny(lower, "file", "upload", "download") && !strings.Contains(lower, "format") {
		suggestions = append(suggestions, "Specify supported file formats and size limitations")
	}

	if containsAny(lower, "search", "find") && !strings.Contains(lower, "result") {
		suggestions = append(suggestions, "Describe how search results should be displayed or filtered")
	}

	if len(suggestions) == 0 {
		suggestions = []string{
			"Consider adding acceptance criteria or success conditions",
			"Think about error scenarios and edge cases",
			"Specify any integration requirements with existing systems",
		}
	}

	return suggestions
}

// CategorizeSuggestions buckets suggestions into clarity, completeness,
// technical, and general groups for the suggestions endpoint.
func CategorizeSuggestions(suggestions []string) map[string][]string {
	categories := map[string][]string{
		"clarity":      {},
		"completeness": {},
		"technical":    {},
		"general":      {},
	}

	for _, s := range suggestions {
		lower := strings.ToLower(s)
		switch {
		case containsAny(lower, "specify", "describe", "detail"):
			categories["clarity"] = append(categories["clarity"], s)
		case containsAny(lower, "add", "include", "consider"):
			categories["completeness"] = append(categories["completeness"], s)
		case containsAny(lower, "security", "format", "integration"):
			categories["technical"] = append(categories["technical"], s)
		default:
			categories["general"] = append(categories["general"], s)
		}
	}

	return categories
}
