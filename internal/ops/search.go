package ops

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"storyforge/internal/config"
	"storyforge/internal/db"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// Search limits
const (
	MaxQueryLength  = db.MaxSearchQueryChars
	MaxSnippetChars = 300
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query          string  // required
	ProjectID      *string // optional filter
	Status         *string // optional filter
	FeatureType    *string // optional filter
	Limit          int     // default from config, bounded by max page size
	Offset         int     // default: 0
	IncludeDeleted bool
}

// SearchResultItem pairs a story with a match snippet.
type SearchResultItem struct {
	Story story.Story `json:"story"`
	// Snippet is HTML-safe: user-controlled content is escaped; only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []SearchResultItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"` // "relevance"
}

// Search performs full-text search across story descriptions and Gherkin content.
// Results are ranked by relevance (BM25) with description matches weighted higher.
func Search(ctx context.Context, database *sql.DB, cfg *config.Config, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	var filters db.SearchFilters
	filters.ProjectID = cleanOptionalString(input.ProjectID)
	if s := cleanOptionalString(input.Status); s != nil {
		if _, ok := story.ParseStatus(*s); !ok {
			return nil, errors.NewInvalidRequest("status must be one of: draft, ready, in_progress, done, blocked")
		}
		filters.Status = s
	}
	filters.FeatureType = cleanOptionalString(input.FeatureType)

	limit := clampLimit(input.Limit, cfg)
	offset := max(input.Offset, 0)

	results, total, err := db.SearchFullText(ctx, database, query, filters, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		// Escape user content, convert internal markers to <b> tags, then truncate
		snippet := escapeSnippetHTML(r.Snippet)
		snippet = truncateSnippet(snippet, MaxSnippetChars)

		items[i] = SearchResultItem{
			Story:   r.Story,
			Snippet: snippet,
		}
	}

	hasMore := offset+len(items) < total

	return &SearchOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "relevance",
	}, nil
}

// truncateSnippet truncates a snippet to approximately maxChars while:
// 1. Preserving valid UTF-8 (never splits multi-byte runes)
// 2. Preserving markup integrity (closes any open <b> tags)
// 3. Preferring word boundaries when possible
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}

	if len(s) <= maxChars {
		return s
	}

	// Find a safe truncation point that doesn't split UTF-8 runes
	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}

	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]

	// Avoid returning malformed HTML by trimming any partial tag/entity suffix.
	// At this point the only tags present should be <b> and </b>, and user content
	// may contain HTML entities (e.g., &lt;).
	if lastLT := strings.LastIndex(truncated, "<"); lastLT != -1 && !strings.Contains(truncated[lastLT:], ">") {
		truncated = truncated[:lastLT]
	}
	if lastAmp := strings.LastIndex(truncated, "&"); lastAmp != -1 && !strings.Contains(truncated[lastAmp:], ";") {
		truncated = truncated[:lastAmp]
	}

	// Try to cut at word boundary if we're not losing too much content
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}

	// Close any unclosed <b> tags to maintain valid HTML structure
	openTags := strings.Count(truncated, "<b>")
	closeTags := strings.Count(truncated, "</b>")
	for range openTags - closeTags {
		truncated += "</b>"
	}

	return truncated + "..."
}

// escapeSnippetHTML escapes user content in a snippet while preserving the
// highlight markers. This prevents XSS from user-controlled story content.
//
// The snippet from SQLite FTS5 contains:
//   - User content (potentially malicious HTML/JS)
//   - Our markers: [[[B]]], [[[/B]]], ...
//
// We need to escape the user content but preserve our markers.
func escapeSnippetHTML(s string) string {
	// Use unlikely placeholders that won't appear in normal content
	const (
		openPlaceholder  = "\x00SF_B_OPEN\x00"
		closePlaceholder = "\x00SF_B_CLOSE\x00"
		openMarker       = "[[[B]]]"
		closeMarker      = "[[[/B]]]"
	)

	// Step 1: Replace internal highlight markers with placeholders.
	// Markers come from SQLite snippet() start/end mark args in internal/db/queries.go.
	s = strings.ReplaceAll(s, openMarker, openPlaceholder)
	s = strings.ReplaceAll(s, closeMarker, closePlaceholder)

	// Step 2: Escape all HTML in user content
	s = html.EscapeString(s)

	// Step 3: Restore highlight tags (and only highlight tags).
	s = strings.ReplaceAll(s, openPlaceholder, "<b>")
	s = strings.ReplaceAll(s, closePlaceholder, "</b>")

	return s
}
