package ops

import (
	"crypto/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"storyforge/internal/config"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// Pagination limits, used when no config is supplied.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies limit defaults and bounds from config.
func clampLimit(limit int, cfg *config.Config) int {
	def, maxLimit := DefaultListLimit, MaxListLimit
	if cfg != nil {
		if cfg.DefaultPageSize > 0 {
			def = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			maxLimit = cfg.MaxPageSize
		}
	}
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// validateDescription checks a feature description against config limits.
// Word count is measured before normalization.
func validateDescription(description string, cfg *config.Config) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return errors.NewInvalidRequest("feature_description is required")
	}
	if cfg == nil {
		return nil
	}
	if cfg.MaxDescriptionChars > 0 {
		if chars := utf8.RuneCountInString(trimmed); chars > cfg.MaxDescriptionChars {
			return errors.NewDescriptionTooLong(cfg.MaxDescriptionChars, chars)
		}
	}
	if cfg.MinDescriptionWords > 0 {
		if words := story.CountWords(trimmed); words < cfg.MinDescriptionWords {
			return errors.NewDescriptionTooShort(cfg.MinDescriptionWords, words)
		}
	}
	return nil
}

// parseTypeAndPriority validates optional story_type and priority strings.
func parseTypeAndPriority(typeStr, priorityStr string) (story.Type, story.Priority, error) {
	storyType, ok := story.ParseType(typeStr)
	if !ok {
		return "", "", errors.NewInvalidRequest("story_type must be one of: epic, feature, story, task")
	}
	priority, ok := story.ParsePriority(priorityStr)
	if !ok {
		return "", "", errors.NewInvalidRequest("priority must be one of: low, medium, high, critical")
	}
	return storyType, priority, nil
}

// cleanOptionalString trims an optional string, dropping it when empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID creates a new ULID string for a story.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
