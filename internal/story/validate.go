package story

import "strings"

// ValidationResult contains the findings of a Gherkin structural check.
type ValidationResult struct {
	Valid  bool     `json:"is_valid"`
	Issues []string `json:"issues"`
}

// ValidateGherkin checks structural well-formedness of a Gherkin document:
// a Feature: declaration, at least one Scenario:, and Given/When/Then steps
// inside the scenarios. Step completeness is evaluated against the last
// scenario block scanned, not per scenario: a scenario missing a step is
// only reported when it is the final one. Issues are data, not errors;
// malformed text never fails the call.
func ValidateGherkin(content string) ValidationResult {
	var issues []string
	lines := strings.Split(content, "\n")

	hasFeature := false
	hasScenario := false
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "Feature:") {
			hasFeature = true
		}
		if strings.HasPrefix(stripped, "Scenario:") {
			hasScenario = true
		}
	}

	if !hasFeature {
		issues = append(issues, "Missing 'Feature:' declaration")
	}
	if !hasScenario {
		issues = append(issues, "Missing 'Scenario:' declaration")
	}

	// Step flags reset at each Scenario: line, so the final state reflects
	// the last scenario block.
	scenarioStarted := false
	hasGiven, hasWhen, hasThen := false, false, false

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "Scenario:"):
			scenarioStarted = true
			hasGiven, hasWhen, hasThen = false, false, false
		case scenarioStarted && strings.HasPrefix(stripped, "Given"):
			hasGiven = true
		case scenarioStarted && strings.HasPrefix(stripped, "When"):
			hasWhen = true
		case scenarioStarted && strings.HasPrefix(stripped, "Then"):
			hasThen = true
		}
	}

	if scenarioStarted && !(hasGiven && hasWhen && hasThen) {
		var missing []string
		if !hasGiven {
			missing = append(missing, "Given")
		}
		if !hasWhen {
			missing = append(missing, "When")
		}
		if !hasThen {
			missing = append(missing, "Then")
		}
		issues = append(issues, "Missing step(s): "+strings.Join(missing, ", "))
	}

	return ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}
