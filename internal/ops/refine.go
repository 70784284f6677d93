package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// RefineInput contains parameters for the Refine operation.
type RefineInput struct {
	ID       string // required
	Feedback string // required
}

// RefineOutput contains the result of the Refine operation.
type RefineOutput struct {
	Story    *story.Story         `json:"story"`
	Quality  story.QualityMetrics `json:"quality"`
	Provider string               `json:"provider"`
}

// Refine re-generates an existing story's content with feedback applied.
// The story keeps its identity; version increments by one.
func Refine(ctx context.Context, database *sql.DB, client *ai.Client, cfg *config.Config, input RefineInput) (*RefineOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	feedback := strings.TrimSpace(input.Feedback)
	if feedback == "" {
		return nil, errors.NewInvalidRequest("feedback is required")
	}
	if cfg != nil && cfg.MaxFeedbackChars > 0 {
		if chars := utf8.RuneCountInString(feedback); chars > cfg.MaxFeedbackChars {
			return nil, errors.NewInvalidRequest(
				fmt.Sprintf("feedback exceeds maximum length of %d characters", cfg.MaxFeedbackChars))
		}
	}

	original, err := db.GetByID(ctx, database, id, false)
	if err != nil {
		return nil, err
	}

	refined, err := client.Refine(ctx, original, feedback)
	if err != nil {
		return nil, err
	}

	if err := db.UpdateByID(ctx, database, refined); err != nil {
		return nil, err
	}

	return &RefineOutput{
		Story:    refined,
		Quality:  story.AnalyzeQuality(refined.GherkinContent),
		Provider: client.ProviderName(),
	}, nil
}
