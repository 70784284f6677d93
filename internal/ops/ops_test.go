package ops

import (
	"context"
	"database/sql"
	"testing"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/db"
)

// setupTest creates an isolated database, template-only AI client, and default
// config for operation tests.
func setupTest(t *testing.T) (*sql.DB, *ai.Client, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	return database, ai.New(cfg), cfg
}

// mustGenerate creates and persists a story, failing the test on error.
func mustGenerate(t *testing.T, database *sql.DB, client *ai.Client, cfg *config.Config, description string) *GenerateOutput {
	t.Helper()

	out, err := Generate(context.Background(), database, client, cfg, GenerateInput{
		FeatureDescription: description,
	})
	if err != nil {
		t.Fatalf("Generate(%q) failed: %v", description, err)
	}
	return out
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func TestClampLimit(t *testing.T) {
	cfg := config.DefaultConfig()

	if got := clampLimit(0, cfg); got != cfg.DefaultPageSize {
		t.Errorf("clampLimit(0) = %d, want %d", got, cfg.DefaultPageSize)
	}
	if got := clampLimit(500, cfg); got != cfg.MaxPageSize {
		t.Errorf("clampLimit(500) = %d, want %d", got, cfg.MaxPageSize)
	}
	if got := clampLimit(25, cfg); got != 25 {
		t.Errorf("clampLimit(25) = %d, want 25", got)
	}
	if got := clampLimit(0, nil); got != DefaultListLimit {
		t.Errorf("clampLimit(0, nil) = %d, want %d", got, DefaultListLimit)
	}
}

func TestCleanOptionalString(t *testing.T) {
	if got := cleanOptionalString(nil); got != nil {
		t.Errorf("cleanOptionalString(nil) = %v, want nil", got)
	}
	empty := "   "
	if got := cleanOptionalString(&empty); got != nil {
		t.Errorf("cleanOptionalString(blank) = %v, want nil", got)
	}
	v := " proj-1 "
	got := cleanOptionalString(&v)
	if got == nil || *got != "proj-1" {
		t.Errorf("cleanOptionalString = %v, want proj-1", got)
	}
}

func TestGenerateULID(t *testing.T) {
	id1, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	id2, err := generateULID()
	if err != nil {
		t.Fatalf("generateULID failed: %v", err)
	}
	if len(id1) != 26 {
		t.Errorf("ULID length = %d, want 26", len(id1))
	}
	if id1 == id2 {
		t.Error("consecutive ULIDs are identical")
	}
}
