package ops

import (
	"context"
	"testing"

	"storyforge/internal/errors"
)

func TestList(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	descriptions := []string{
		"User authentication with social login",
		"Search products by category",
		"Upload files to shared folders",
	}
	for _, d := range descriptions {
		mustGenerate(t, database, client, cfg, d)
	}

	out, err := List(ctx, database, cfg, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Pagination.Total != 3 {
		t.Errorf("Total = %d, want 3", out.Pagination.Total)
	}
	if len(out.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(out.Items))
	}
	if out.Sort != "updated_at_desc" {
		t.Errorf("Sort = %q, want updated_at_desc", out.Sort)
	}
	if out.Pagination.HasMore {
		t.Error("HasMore = true with all items returned")
	}
}

func TestList_FeatureTypeFilter(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	mustGenerate(t, database, client, cfg, "User authentication with social login")
	mustGenerate(t, database, client, cfg, "Search products by category")

	out, err := List(ctx, database, cfg, ListInput{FeatureType: strPtr("authentication")})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Pagination.Total != 1 {
		t.Errorf("Total = %d, want 1", out.Pagination.Total)
	}
}

func TestList_Pagination(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()

	for range 5 {
		mustGenerate(t, database, client, cfg, "Send notification emails to users")
	}

	out, err := List(ctx, database, cfg, ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(out.Items))
	}
	if !out.Pagination.HasMore {
		t.Error("HasMore = false with more rows available")
	}
	if out.Pagination.Total != 5 {
		t.Errorf("Total = %d, want 5", out.Pagination.Total)
	}

	out, err = List(ctx, database, cfg, ListInput{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 {
		t.Errorf("last page len = %d, want 1", len(out.Items))
	}
	if out.Pagination.HasMore {
		t.Error("HasMore = true on last page")
	}
}

func TestList_EmptyResult(t *testing.T) {
	database, _, cfg := setupTest(t)

	out, err := List(context.Background(), database, cfg, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Items == nil {
		t.Error("Items = nil, want empty slice")
	}
	if out.Pagination.Total != 0 {
		t.Errorf("Total = %d, want 0", out.Pagination.Total)
	}
}

func TestList_InvalidFilters(t *testing.T) {
	database, _, cfg := setupTest(t)
	ctx := context.Background()

	cases := []ListInput{
		{StoryType: strPtr("saga")},
		{Priority: strPtr("urgent")},
		{Status: strPtr("archived")},
	}
	for _, input := range cases {
		if _, err := List(ctx, database, cfg, input); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("List(%+v) error = %v, want INVALID_REQUEST", input, err)
		}
	}
}
