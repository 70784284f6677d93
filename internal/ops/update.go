package ops

import (
	"context"
	"database/sql"
	"strings"

	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// UpdateInput contains parameters for the Update operation.
// Nil fields are left unchanged.
type UpdateInput struct {
	ID                 string // required
	GherkinContent     *string
	AcceptanceCriteria []string // nil means unchanged; empty slice clears
	EstimatedEffort    *int
	StoryType          *string
	Priority           *string
	Status             *string
	ProjectID          *string
	Tags               []string // nil means unchanged; empty slice clears
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	Story   *story.Story         `json:"story"`
	Quality story.QualityMetrics `json:"quality"`
}

// validEfforts mirrors the accepted story-point values.
var validEfforts = map[int]bool{1: true, 2: true, 3: true, 5: true, 8: true, 13: true}

// Update applies a partial update to an existing story.
// Identity fields (id, feature_description, feature_type, components,
// generated_at) never change.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s, err := db.GetByID(ctx, database, id, false)
	if err != nil {
		return nil, err
	}

	if input.GherkinContent != nil {
		content := strings.TrimSpace(*input.GherkinContent)
		if content == "" {
			return nil, errors.NewInvalidRequest("gherkin_content must not be empty")
		}
		s.GherkinContent = content
	}
	if input.AcceptanceCriteria != nil {
		s.AcceptanceCriteria = input.AcceptanceCriteria
	}
	if input.EstimatedEffort != nil {
		if !validEfforts[*input.EstimatedEffort] {
			return nil, errors.NewInvalidRequest("estimated_effort must be one of: 1, 2, 3, 5, 8, 13")
		}
		s.EstimatedEffort = *input.EstimatedEffort
	}
	if input.StoryType != nil {
		storyType, ok := story.ParseType(strings.TrimSpace(*input.StoryType))
		if !ok {
			return nil, errors.NewInvalidRequest("story_type must be one of: epic, feature, story, task")
		}
		s.StoryType = storyType
	}
	if input.Priority != nil {
		priority, ok := story.ParsePriority(strings.TrimSpace(*input.Priority))
		if !ok {
			return nil, errors.NewInvalidRequest("priority must be one of: low, medium, high, critical")
		}
		s.Priority = priority
	}
	if input.Status != nil {
		status, ok := story.ParseStatus(strings.TrimSpace(*input.Status))
		if !ok {
			return nil, errors.NewInvalidRequest("status must be one of: draft, ready, in_progress, done, blocked")
		}
		s.Status = status
	}
	if input.ProjectID != nil {
		s.ProjectID = cleanOptionalString(input.ProjectID)
	}
	if input.Tags != nil {
		s.Tags = input.Tags
	}

	if err := db.UpdateByID(ctx, database, s); err != nil {
		return nil, err
	}

	return &UpdateOutput{
		Story:   s,
		Quality: story.AnalyzeQuality(s.GherkinContent),
	}, nil
}
