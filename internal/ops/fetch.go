package ops

import (
	"context"
	"database/sql"
	"strings"

	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string // required
	IncludeDeleted bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	Story   *story.Story         `json:"story"`
	Quality story.QualityMetrics `json:"quality"`
}

// Fetch retrieves a story by ID. Quality metrics are recomputed on every read.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	s, err := db.GetByID(ctx, database, id, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		Story:   s,
		Quality: story.AnalyzeQuality(s.GherkinContent),
	}, nil
}
