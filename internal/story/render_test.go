package story

import (
	"strings"
	"testing"
)

func TestRenderGherkin_CatalogType(t *testing.T) {
	c := Components{
		Role:        "user",
		Action:      "login support",
		Benefit:     "securely access my account",
		FeatureName: "User Authentication",
		FeatureType: FeatureAuthentication,
	}

	got := RenderGherkin(c, FeatureAuthentication)

	wantLines := []string{
		"Feature: User Authentication",
		"  As a user",
		"  I want to login support",
		"  So that I can securely access my account",
		"  Scenario: Successful authentication",
		"    Given I am on the login page",
		"  Scenario: Invalid credentials",
		"    Then I should see an error message",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("missing line %q in:\n%s", line, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("expected trailing newlines to be trimmed")
	}
}

func TestRenderGherkin_GeneralSynthesizesScenario(t *testing.T) {
	c := Components{
		Role:        "user",
		Action:      "configure workspace color",
		Benefit:     "accomplish my goals efficiently",
		FeatureName: "Configure Workspace Color",
		FeatureType: FeatureGeneral,
	}

	got := RenderGherkin(c, FeatureGeneral)

	if count := strings.Count(got, "Scenario:"); count != 1 {
		t.Errorf("scenario count = %d, want 1", count)
	}
	if !strings.Contains(got, "When I configure workspace color") {
		t.Errorf("expected synthesized When step in:\n%s", got)
	}
	if !strings.Contains(got, "Then I should be able to accomplish my goals efficiently") {
		t.Errorf("expected synthesized Then step in:\n%s", got)
	}
}

func TestRenderGherkin_Deterministic(t *testing.T) {
	c := Components{
		Role:        "user",
		Action:      "search products name",
		Benefit:     "quickly find the information I need",
		FeatureName: "Search Functionality",
		FeatureType: FeatureSearch,
	}

	first := RenderGherkin(c, FeatureSearch)
	second := RenderGherkin(c, FeatureSearch)
	if first != second {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestAcceptanceCriteria(t *testing.T) {
	c := Components{
		Role:   "user",
		Action: "login support",
	}

	t.Run("catalog type", func(t *testing.T) {
		got := AcceptanceCriteria(c, FeatureAuthentication)
		if len(got) != 5 {
			t.Fatalf("criteria count = %d, want 5 (2 scenarios + 3 common)", len(got))
		}
		if !strings.HasPrefix(got[0], "Given I am on the login page, when") {
			t.Errorf("unexpected first criterion: %q", got[0])
		}
		if got[2] != "The user should be able to login support successfully" {
			t.Errorf("unexpected role criterion: %q", got[2])
		}
	})

	t.Run("general type has only common criteria", func(t *testing.T) {
		got := AcceptanceCriteria(c, FeatureGeneral)
		if len(got) != 3 {
			t.Fatalf("criteria count = %d, want 3", len(got))
		}
	})
}
