package ops

import (
	"strings"

	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	FeatureDescription string // required
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Suggestions []string            `json:"suggestions"`
	Categories  map[string][]string `json:"categories"`
	Count       int                 `json:"count"`
}

// Suggest returns improvement suggestions for a feature description,
// grouped into clarity, completeness, technical, and general categories.
// Stateless; does not touch the database.
func Suggest(input SuggestInput) (*SuggestOutput, error) {
	description := strings.TrimSpace(input.FeatureDescription)
	if description == "" {
		return nil, errors.NewInvalidRequest("feature_description is required")
	}

	suggestions := story.Suggestions(description)

	return &SuggestOutput{
		Suggestions: suggestions,
		Categories:  story.CategorizeSuggestions(suggestions),
		Count:       len(suggestions),
	}, nil
}
