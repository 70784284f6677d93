package ops

import (
	"context"
	"strings"
	"testing"

	"storyforge/internal/errors"
)

func TestRefine(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	generated := mustGenerate(t, database, client, cfg, "User authentication with social login")
	original := generated.Story

	out, err := Refine(ctx, database, client, cfg, RefineInput{
		ID:       original.ID,
		Feedback: "also require a password reset flow",
	})
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}

	refined := out.Story
	if refined.ID != original.ID {
		t.Errorf("ID = %q, want %q", refined.ID, original.ID)
	}
	if refined.Version != original.Version+1 {
		t.Errorf("Version = %d, want %d", refined.Version, original.Version+1)
	}
	if refined.FeatureDescription != original.FeatureDescription {
		t.Error("FeatureDescription changed during refinement")
	}
	if refined.GeneratedAt != original.GeneratedAt {
		t.Error("GeneratedAt changed during refinement")
	}
	if refined.RefinementFeedback == nil || *refined.RefinementFeedback != "also require a password reset flow" {
		t.Errorf("RefinementFeedback = %v", refined.RefinementFeedback)
	}
	if refined.RefinedAt == nil {
		t.Error("RefinedAt not set")
	}

	// Persisted: version visible on fetch
	fetched, err := Fetch(ctx, database, FetchInput{ID: original.ID})
	if err != nil {
		t.Fatalf("Fetch after Refine failed: %v", err)
	}
	if fetched.Story.Version != 2 {
		t.Errorf("persisted Version = %d, want 2", fetched.Story.Version)
	}
}

func TestRefine_ValidationErrors(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	generated := mustGenerate(t, database, client, cfg, "User authentication with social login")

	cases := []struct {
		name  string
		input RefineInput
		code  errors.ErrorCode
	}{
		{"missing id", RefineInput{Feedback: "x"}, errors.ErrInvalidRequest},
		{"missing feedback", RefineInput{ID: generated.Story.ID}, errors.ErrInvalidRequest},
		{"unknown story", RefineInput{ID: "01UNKNOWN", Feedback: "x"}, errors.ErrNotFound},
		{
			"feedback too long",
			RefineInput{ID: generated.Story.ID, Feedback: strings.Repeat("a", cfg.MaxFeedbackChars+1)},
			errors.ErrInvalidRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Refine(ctx, database, client, cfg, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("Refine error = %v, want %s", err, tc.code)
			}
		})
	}
}

func TestRefine_SequentialVersions(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	generated := mustGenerate(t, database, client, cfg, "Upload files to shared folders")
	id := generated.Story.ID

	for i, feedback := range []string{"support large files", "add virus scanning"} {
		out, err := Refine(ctx, database, client, cfg, RefineInput{ID: id, Feedback: feedback})
		if err != nil {
			t.Fatalf("Refine %d failed: %v", i+1, err)
		}
		if out.Story.Version != i+2 {
			t.Errorf("Version after refine %d = %d, want %d", i+1, out.Story.Version, i+2)
		}
	}
}
