package ops

import (
	"context"
	"database/sql"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	FeatureDescription string  // required
	StoryType          string  // optional, default: "story"
	Priority           string  // optional, default: "medium"
	ProjectID          *string // optional
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Story    *story.Story         `json:"story"`
	Quality  story.QualityMetrics `json:"quality"`
	Provider string               `json:"provider"`
}

// Generate creates a new story from a feature description and persists it.
func Generate(ctx context.Context, database *sql.DB, client *ai.Client, cfg *config.Config, input GenerateInput) (*GenerateOutput, error) {
	if err := validateDescription(input.FeatureDescription, cfg); err != nil {
		return nil, err
	}

	storyType, priority, err := parseTypeAndPriority(input.StoryType, input.Priority)
	if err != nil {
		return nil, err
	}

	s, err := client.Generate(ctx, input.FeatureDescription, storyType, priority)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s.ID = id
	s.ProjectID = cleanOptionalString(input.ProjectID)
	s.UpdatedAt = s.GeneratedAt

	if err := db.Insert(ctx, database, s); err != nil {
		return nil, err
	}

	return &GenerateOutput{
		Story:    s,
		Quality:  story.AnalyzeQuality(s.GherkinContent),
		Provider: client.ProviderName(),
	}, nil
}
