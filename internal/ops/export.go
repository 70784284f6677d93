package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// ExportFormat selects the export file format.
type ExportFormat string

const (
	FormatFeature  ExportFormat = "feature"  // raw Gherkin, .feature file
	FormatMarkdown ExportFormat = "markdown" // full story document, .md file
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string       // required
	Format ExportFormat // default: feature
	Dir    string       // optional, default: <baseDir>/exports
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a story to a file as Gherkin or Markdown.
func Export(ctx context.Context, database *sql.DB, baseDir string, input ExportInput) (*ExportOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	format := input.Format
	if format == "" {
		format = FormatFeature
	}
	if format != FormatFeature && format != FormatMarkdown {
		return nil, errors.NewInvalidRequest("format must be one of: feature, markdown")
	}

	s, err := db.GetByID(ctx, database, id, false)
	if err != nil {
		return nil, err
	}

	dir := input.Dir
	if dir == "" {
		dir = filepath.Join(baseDir, "exports")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	ext := ".feature"
	content := s.GherkinContent + "\n"
	if format == FormatMarkdown {
		ext = ".md"
		content = RenderMarkdown(s)
	}
	exportPath := filepath.Join(dir, s.ID+ext)

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, []byte(content), 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     string(format),
		ExportedAt: time.Now().Unix(),
	}, nil
}

// RenderMarkdown renders a story as a Markdown document.
// The same renderer feeds the web preview endpoint.
func RenderMarkdown(s *story.Story) string {
	var b strings.Builder

	b.WriteString("# " + s.Components.FeatureName + "\n\n")
	b.WriteString(s.FeatureDescription + "\n\n")

	b.WriteString("- **Type:** " + string(s.StoryType) + "\n")
	b.WriteString("- **Priority:** " + string(s.Priority) + "\n")
	b.WriteString("- **Status:** " + string(s.Status) + "\n")
	b.WriteString(fmt.Sprintf("- **Effort:** %d points\n", s.EstimatedEffort))
	if len(s.Tags) > 0 {
		b.WriteString("- **Tags:** " + strings.Join(s.Tags, ", ") + "\n")
	}
	b.WriteString("\n## Gherkin\n\n```gherkin\n")
	b.WriteString(s.GherkinContent)
	b.WriteString("\n```\n")

	if len(s.AcceptanceCriteria) > 0 {
		b.WriteString("\n## Acceptance Criteria\n\n")
		for _, c := range s.AcceptanceCriteria {
			b.WriteString("- " + c + "\n")
		}
	}

	return b.String()
}
