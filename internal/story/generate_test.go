package story

import (
	"strings"
	"testing"

	"storyforge/internal/errors"
)

func TestGeneratorGenerate(t *testing.T) {
	g := NewGenerator()

	s, err := g.Generate("User authentication with social login support", TypeStory, PriorityMedium)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if s.FeatureType != FeatureAuthentication {
		t.Errorf("FeatureType = %q, want authentication", s.FeatureType)
	}
	if s.EstimatedEffort != 8 {
		t.Errorf("EstimatedEffort = %d, want 8", s.EstimatedEffort)
	}
	if !strings.HasPrefix(s.GherkinContent, "Feature: User Authentication") {
		t.Errorf("unexpected gherkin start: %q", s.GherkinContent)
	}
	if s.Status != StatusDraft {
		t.Errorf("Status = %q, want draft", s.Status)
	}
	if s.Version != 1 {
		t.Errorf("Version = %d, want 1", s.Version)
	}
	if s.ID != "" {
		t.Error("generator must not assign an ID")
	}
	if len(s.AcceptanceCriteria) == 0 {
		t.Error("expected acceptance criteria")
	}
	if len(s.Tags) == 0 || s.Tags[0] != "story" {
		t.Errorf("Tags = %v, want story type tag first", s.Tags)
	}
	if s.GeneratedAt == 0 {
		t.Error("expected GeneratedAt to be set")
	}
}

func TestGeneratorGenerate_Deterministic(t *testing.T) {
	g := NewGenerator()

	first, err := g.Generate("Search products by name with filters", TypeStory, PriorityMedium)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := g.Generate("Search products by name with filters", TypeStory, PriorityMedium)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if first.GherkinContent != second.GherkinContent {
		t.Error("gherkin content differs between runs")
	}
	if first.EstimatedEffort != second.EstimatedEffort {
		t.Error("effort differs between runs")
	}
}

func TestGeneratorGenerate_EmptyDescription(t *testing.T) {
	g := NewGenerator()

	_, err := g.Generate("   ", TypeStory, PriorityMedium)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestGeneratorRefine(t *testing.T) {
	g := NewGenerator()

	original, err := g.Generate("User authentication with social login support", TypeStory, PriorityHigh)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	original.ID = "01STORY"

	refined, err := g.Refine(original, "Cover account lockout after repeated failures")
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}

	if refined.ID != "01STORY" {
		t.Errorf("ID = %q, identity must be preserved", refined.ID)
	}
	if refined.Version != 2 {
		t.Errorf("Version = %d, want 2", refined.Version)
	}
	if refined.FeatureDescription != original.FeatureDescription {
		t.Error("feature description must not change on refine")
	}
	if refined.RefinementFeedback == nil || *refined.RefinementFeedback == "" {
		t.Error("expected refinement feedback to be recorded")
	}
	if refined.RefinedAt == nil {
		t.Error("expected RefinedAt to be set")
	}
	if refined.GeneratedAt != original.GeneratedAt {
		t.Error("GeneratedAt must be preserved")
	}
	// Original is untouched
	if original.Version != 1 {
		t.Errorf("original Version = %d, want 1", original.Version)
	}
}

func TestGeneratorRefine_Validation(t *testing.T) {
	g := NewGenerator()

	if _, err := g.Refine(nil, "feedback"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for nil story, got %v", err)
	}

	original, _ := g.Generate("User authentication with social login support", TypeStory, PriorityMedium)
	if _, err := g.Refine(original, "  "); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for blank feedback, got %v", err)
	}
}
