package ops

import (
	"context"
	"testing"

	"storyforge/internal/errors"
)

func TestFetch(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	generated := mustGenerate(t, database, client, cfg, "Search products by category")

	out, err := Fetch(ctx, database, FetchInput{ID: generated.Story.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if out.Story.ID != generated.Story.ID {
		t.Errorf("ID = %q, want %q", out.Story.ID, generated.Story.ID)
	}
	if out.Quality.ScenarioCount < 1 {
		t.Errorf("ScenarioCount = %d, want >= 1", out.Quality.ScenarioCount)
	}
}

func TestFetch_Errors(t *testing.T) {
	database, _, _ := setupTest(t)
	ctx := context.Background()

	if _, err := Fetch(ctx, database, FetchInput{ID: "  "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Fetch blank id error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Fetch(ctx, database, FetchInput{ID: "01MISSING"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch unknown id error = %v, want NOT_FOUND", err)
	}
}

func TestFetch_DeletedStory(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	generated := mustGenerate(t, database, client, cfg, "Delete old user accounts")
	id := generated.Story.ID

	if _, err := Delete(ctx, database, DeleteInput{ID: id}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := Fetch(ctx, database, FetchInput{ID: id}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch deleted error = %v, want NOT_FOUND", err)
	}

	out, err := Fetch(ctx, database, FetchInput{ID: id, IncludeDeleted: true})
	if err != nil {
		t.Fatalf("Fetch includeDeleted failed: %v", err)
	}
	if out.Story.DeletedAt == nil {
		t.Error("DeletedAt = nil for soft-deleted story")
	}
}
