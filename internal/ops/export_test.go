package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyforge/internal/errors"
)

func TestExport_Feature(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()
	baseDir := t.TempDir()

	generated := mustGenerate(t, database, client, cfg, "User authentication with social login")
	id := generated.Story.ID

	out, err := Export(ctx, database, baseDir, ExportInput{ID: id})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Format != "feature" {
		t.Errorf("Format = %q, want feature", out.Format)
	}
	if filepath.Ext(out.Path) != ".feature" {
		t.Errorf("Path = %q, want .feature extension", out.Path)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Feature:") {
		t.Errorf("export content does not start with Feature: %q", string(data)[:40])
	}
}

func TestExport_Markdown(t *testing.T) {
	database, client, cfg := setupTest(t)
	ctx := context.Background()
	baseDir := t.TempDir()

	generated := mustGenerate(t, database, client, cfg, "Search products by category")
	id := generated.Story.ID

	out, err := Export(ctx, database, baseDir, ExportInput{ID: id, Format: FormatMarkdown})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Ext(out.Path) != ".md" {
		t.Errorf("Path = %q, want .md extension", out.Path)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# ") {
		t.Error("markdown export missing title heading")
	}
	if !strings.Contains(content, "```gherkin") {
		t.Error("markdown export missing gherkin block")
	}
	if !strings.Contains(content, "## Acceptance Criteria") {
		t.Error("markdown export missing acceptance criteria section")
	}
}

func TestExport_Validation(t *testing.T) {
	database, _, _ := setupTest(t)
	ctx := context.Background()
	baseDir := t.TempDir()

	if _, err := Export(ctx, database, baseDir, ExportInput{ID: ""}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank id error = %v, want INVALID_REQUEST", err)
	}
	if _, err := Export(ctx, database, baseDir, ExportInput{ID: "01MISSING"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown id error = %v, want NOT_FOUND", err)
	}
	if _, err := Export(ctx, database, baseDir, ExportInput{ID: "01X", Format: "pdf"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad format error = %v, want INVALID_REQUEST", err)
	}
}
