package ops

import (
	"context"
	"database/sql"
	"strings"

	"storyforge/internal/db"
	"storyforge/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      string `json:"story_id"`
	Deleted bool   `json:"deleted"`
}

// Delete soft-deletes a story. The row remains recoverable until purged.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.SoftDelete(ctx, database, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		ID:      id,
		Deleted: true,
	}, nil
}
