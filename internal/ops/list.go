package ops

import (
	"context"
	"database/sql"

	"storyforge/internal/config"
	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	ProjectID      *string // optional filter
	StoryType      *string // optional filter
	Priority       *string // optional filter
	Status         *string // optional filter
	FeatureType    *string // optional filter
	Limit          int     // default from config, bounded by max page size
	Offset         int     // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []story.Story `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Sort       string        `json:"sort"`
}

// List retrieves stories with filtering and pagination, newest update first.
func List(ctx context.Context, database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	filters, err := buildFilters(input)
	if err != nil {
		return nil, err
	}

	limit := clampLimit(input.Limit, cfg)
	offset := max(input.Offset, 0)

	items, total, err := db.List(ctx, database, filters, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if items == nil {
		items = []story.Story{}
	}

	hasMore := offset+len(items) < total

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}

// buildFilters validates enum filters and converts them to db form.
func buildFilters(input ListInput) (db.ListFilters, error) {
	var filters db.ListFilters

	filters.ProjectID = cleanOptionalString(input.ProjectID)

	if st := cleanOptionalString(input.StoryType); st != nil {
		if _, ok := story.ParseType(*st); !ok {
			return filters, errors.NewInvalidRequest("story_type must be one of: epic, feature, story, task")
		}
		filters.StoryType = st
	}
	if p := cleanOptionalString(input.Priority); p != nil {
		if _, ok := story.ParsePriority(*p); !ok {
			return filters, errors.NewInvalidRequest("priority must be one of: low, medium, high, critical")
		}
		filters.Priority = p
	}
	if s := cleanOptionalString(input.Status); s != nil {
		if _, ok := story.ParseStatus(*s); !ok {
			return filters, errors.NewInvalidRequest("status must be one of: draft, ready, in_progress, done, blocked")
		}
		filters.Status = s
	}
	filters.FeatureType = cleanOptionalString(input.FeatureType)

	return filters, nil
}
