package ops

import (
	"strings"

	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// ValidateInput contains parameters for the Validate operation.
type ValidateInput struct {
	GherkinContent string // required
}

// ValidateOutput contains the result of the Validate operation.
type ValidateOutput struct {
	Valid   bool                 `json:"valid"`
	Issues  []string             `json:"issues"`
	Quality story.QualityMetrics `json:"quality"`
}

// Validate checks Gherkin syntax and computes quality metrics.
// Stateless; does not touch the database.
func Validate(input ValidateInput) (*ValidateOutput, error) {
	content := strings.TrimSpace(input.GherkinContent)
	if content == "" {
		return nil, errors.NewInvalidRequest("gherkin_content is required")
	}

	result := story.ValidateGherkin(content)
	issues := result.Issues
	if issues == nil {
		issues = []string{}
	}

	return &ValidateOutput{
		Valid:   result.Valid,
		Issues:  issues,
		Quality: story.AnalyzeQuality(content),
	}, nil
}
