package story

import (
	"strings"
	"time"

	"storyforge/internal/errors"
)

// Generator runs the template-based story pipeline. It is stateless and safe
// for concurrent use: the catalog and keyword tables are read-only.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate converts a feature description into a story draft. The pipeline
// is classify → extract → render → estimate; every sub-step has a default
// fallback, so generation fails only for a blank description. The returned
// story has no ID, draft status, and version 1; persistence concerns
// (ID assignment, project linkage) belong to the caller.
func (g *Generator) Generate(description string, storyType Type, priority Priority) (*Story, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errors.NewInvalidRequest("feature description must not be empty")
	}

	normalized := Normalize(description)
	featureType := DetectFeatureType(normalized)
	components := ExtractComponents(normalized, featureType)

	return &Story{
		FeatureDescription: description,
		GherkinContent:     RenderGherkin(components, featureType),
		AcceptanceCriteria: AcceptanceCriteria(components, featureType),
		EstimatedEffort:    EstimateEffort(normalized, featureType),
		StoryType:          storyType,
		Priority:           priority,
		Status:             StatusDraft,
		FeatureType:        featureType,
		Tags:               GenerateTags(description, storyType),
		Components:         components,
		GeneratedAt:        time.Now().Unix(),
		Version:            1,
	}, nil
}

// Refine re-runs the pipeline over the original description concatenated
// with the feedback, then merges the regenerated gherkin, criteria, and
// effort into a copy of the original story. The story ID, feature type,
// components, and generation timestamp are preserved; the version counter
// increments and the refinement fields are set.
func (g *Generator) Refine(original *Story, feedback string) (*Story, error) {
	if original == nil {
		return nil, errors.NewInvalidRequest("original story is required")
	}
	if strings.TrimSpace(feedback) == "" {
		return nil, errors.NewInvalidRequest("refinement feedback must not be empty")
	}

	combined := original.FeatureDescription + " " + feedback
	regenerated, err := g.Generate(combined, original.StoryType, original.Priority)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	refined := *original
	refined.GherkinContent = regenerated.GherkinContent
	refined.AcceptanceCriteria = regenerated.AcceptanceCriteria
	refined.EstimatedEffort = regenerated.EstimatedEffort
	refined.RefinementFeedback = &feedback
	refined.RefinedAt = &now
	refined.Version = original.Version + 1

	return &refined, nil
}
