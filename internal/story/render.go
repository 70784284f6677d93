package story

import (
	"fmt"
	"strings"
)

// RenderGherkin assembles the Gherkin document for the given components and
// feature type. Catalog types render their two canned scenarios; general
// synthesizes a single scenario from the extracted action and benefit. The
// output is trimmed of trailing blank lines and is byte-identical for
// identical input.
func RenderGherkin(c Components, ft FeatureType) string {
	scenarios := scenariosFor(c, ft)

	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\n", c.FeatureName)
	fmt.Fprintf(&b, "  As a %s\n", c.Role)
	fmt.Fprintf(&b, "  I want to %s\n", c.Action)
	fmt.Fprintf(&b, "  So that I can %s\n", c.Benefit)
	b.WriteString("\n")

	for _, s := range scenarios {
		fmt.Fprintf(&b, "  Scenario: %s\n", s.Name)
		fmt.Fprintf(&b, "    Given %s\n", s.Given)
		fmt.Fprintf(&b, "    When %s\n", s.When)
		fmt.Fprintf(&b, "    Then %s\n", s.Then)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// scenariosFor returns the scenario bodies for a feature type.
func scenariosFor(c Components, ft FeatureType) []Scenario {
	if entry := CatalogEntryFor(ft); entry != nil {
		return entry.Scenarios
	}
	return []Scenario{
		{
			Name:  "Basic functionality",
			Given: "I am using the system",
			When:  "I " + c.Action,
			Then:  "I should be able to " + c.Benefit,
		},
	}
}

// AcceptanceCriteria derives the criteria list for a story: one line per
// canned scenario, followed by three common criteria.
func AcceptanceCriteria(c Components, ft FeatureType) []string {
	var criteria []string

	if entry := CatalogEntryFor(ft); entry != nil {
		for _, s := range entry.Scenarios {
			criteria = append(criteria, fmt.Sprintf("Given %s, when %s, then %s", s.Given, s.When, s.Then))
		}
	}

	criteria = append(criteria,
		fmt.Sprintf("The %s should be able to %s successfully", c.Role, c.Action),
		"Appropriate error messages should be displayed for invalid inputs",
		"The feature should work across different browsers and devices",
	)

	return criteria
}
