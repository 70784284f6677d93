package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// MaxSearchQueryChars is the maximum length accepted for a search query.
const MaxSearchQueryChars = 200

const storyColumns = `id, feature_description, gherkin_content, acceptance_json,
	estimated_effort, story_type, priority, status, feature_type,
	project_id, tags_json, components_json, refinement_feedback, refined_at,
	version, generated_at, updated_at, deleted_at`

// Insert stores a new story in the database.
func Insert(ctx context.Context, db *sql.DB, s *story.Story) error {
	acceptanceJSON, err := marshalNullable(s.AcceptanceCriteria)
	if err != nil {
		return errors.NewInternal(err)
	}
	tagsJSON, err := marshalNullable(s.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}
	componentsData, err := json.Marshal(s.Components)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO stories (
			id, feature_description, gherkin_content, acceptance_json,
			estimated_effort, story_type, priority, status, feature_type,
			project_id, tags_json, components_json, refinement_feedback, refined_at,
			version, generated_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.ExecContext(ctx, query,
		s.ID, s.FeatureDescription, s.GherkinContent, acceptanceJSON,
		s.EstimatedEffort, string(s.StoryType), string(s.Priority), string(s.Status), string(s.FeatureType),
		toNullString(s.ProjectID), tagsJSON, string(componentsData),
		toNullString(s.RefinementFeedback), toNullInt64(s.RefinedAt),
		s.Version, s.GeneratedAt, s.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves a story by its ULID.
// If includeDeleted is false, soft-deleted stories are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*story.Story, error) {
	query := "SELECT " + storyColumns + " FROM stories WHERE id = ?"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := db.QueryRowContext(ctx, query, id)
	s, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return s, nil
}

// ListFilters narrows List results. Nil fields mean no filtering.
type ListFilters struct {
	ProjectID   *string
	StoryType   *string
	Priority    *string
	Status      *string
	FeatureType *string
}

// List retrieves stories matching the filters, newest update first.
// Returns the page of stories and the total match count.
func List(ctx context.Context, db *sql.DB, filters ListFilters, limit, offset int, includeDeleted bool) ([]story.Story, int, error) {
	where, args := buildListWhere(filters, includeDeleted)

	var total int
	countQuery := "SELECT COUNT(*) FROM stories" + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := "SELECT " + storyColumns + " FROM stories" + where +
		" ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var stories []story.Story
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		stories = append(stories, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return stories, total, nil
}

func buildListWhere(filters ListFilters, includeDeleted bool) (string, []any) {
	var conds []string
	var args []any

	if !includeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if filters.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *filters.ProjectID)
	}
	if filters.StoryType != nil {
		conds = append(conds, "story_type = ?")
		args = append(args, *filters.StoryType)
	}
	if filters.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, *filters.Priority)
	}
	if filters.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *filters.Status)
	}
	if filters.FeatureType != nil {
		conds = append(conds, "feature_type = ?")
		args = append(args, *filters.FeatureType)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// UpdateByID updates mutable fields of an existing story.
// Sets updated_at to current timestamp.
// Does NOT change: id, feature_description, feature_type, components, generated_at
func UpdateByID(ctx context.Context, db *sql.DB, s *story.Story) error {
	acceptanceJSON, err := marshalNullable(s.AcceptanceCriteria)
	if err != nil {
		return errors.NewInternal(err)
	}
	tagsJSON, err := marshalNullable(s.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()

	query := `
		UPDATE stories
		SET gherkin_content = ?, acceptance_json = ?, estimated_effort = ?,
			story_type = ?, priority = ?, status = ?, project_id = ?, tags_json = ?,
			refinement_feedback = ?, refined_at = ?, version = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query,
		s.GherkinContent, acceptanceJSON, s.EstimatedEffort,
		string(s.StoryType), string(s.Priority), string(s.Status),
		toNullString(s.ProjectID), tagsJSON,
		toNullString(s.RefinementFeedback), toNullInt64(s.RefinedAt),
		s.Version, now,
		s.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(s.ID)
	}

	// Update the struct's UpdatedAt field
	s.UpdatedAt = now

	return nil
}

// SoftDelete marks a story as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE stories
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// Purge permanently removes soft-deleted stories.
// If olderThan > 0, only rows soft-deleted before that Unix timestamp are removed.
// Returns the number of rows removed.
func Purge(ctx context.Context, db *sql.DB, olderThan int64) (int, error) {
	query := "DELETE FROM stories WHERE deleted_at IS NOT NULL"
	var args []any
	if olderThan > 0 {
		query += " AND deleted_at < ?"
		args = append(args, olderThan)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(rowsAffected), nil
}

// SearchFilters narrows full-text search results. Nil fields mean no filtering.
type SearchFilters struct {
	ProjectID   *string
	Status      *string
	FeatureType *string
}

// SearchResult pairs a matched story with a highlighted snippet.
// Snippet highlights use internal markers ([[[B]]] / [[[/B]]]); callers
// convert them to HTML after escaping (see internal/ops).
type SearchResult struct {
	Story   story.Story
	Snippet string
}

// SearchFullText performs an FTS5 match over feature descriptions and Gherkin
// content, ranked by BM25 with description matches weighted 3x higher.
func SearchFullText(ctx context.Context, db *sql.DB, query string, filters SearchFilters, limit, offset int, includeDeleted bool) ([]SearchResult, int, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, 0, nil
	}

	var conds []string
	args := []any{match}
	if !includeDeleted {
		conds = append(conds, "s.deleted_at IS NULL")
	}
	if filters.ProjectID != nil {
		conds = append(conds, "s.project_id = ?")
		args = append(args, *filters.ProjectID)
	}
	if filters.Status != nil {
		conds = append(conds, "s.status = ?")
		args = append(args, *filters.Status)
	}
	if filters.FeatureType != nil {
		conds = append(conds, "s.feature_type = ?")
		args = append(args, *filters.FeatureType)
	}

	where := ""
	if len(conds) > 0 {
		where = " AND " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM stories_fts
		JOIN stories s ON s.rowid = stories_fts.rowid
		WHERE stories_fts MATCH ?` + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	searchQuery := `
		SELECT ` + prefixColumns("s.") + `,
			snippet(stories_fts, -1, '[[[B]]]', '[[[/B]]]', '...', 16) AS snip
		FROM stories_fts
		JOIN stories s ON s.rowid = stories_fts.rowid
		WHERE stories_fts MATCH ?` + where + `
		ORDER BY bm25(stories_fts, 3.0, 1.0)
		LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, searchQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		s, snip, err := scanStoryWithSnippet(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		results = append(results, SearchResult{Story: *s, Snippet: snip})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return results, total, nil
}

// buildMatchQuery quotes each term so user input cannot inject FTS5 operators.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func prefixColumns(prefix string) string {
	cols := strings.Split(storyColumns, ",")
	for i, c := range cols {
		cols[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanStory scans a single row into a Story struct.
func scanStory(row scanner) (*story.Story, error) {
	var (
		s              story.Story
		storyType      string
		priority       string
		status         string
		featureType    string
		acceptanceJSON sql.NullString
		projectID      sql.NullString
		tagsJSON       sql.NullString
		componentsJSON sql.NullString
		feedback       sql.NullString
		refinedAt      sql.NullInt64
		deletedAt      sql.NullInt64
	)

	err := row.Scan(
		&s.ID, &s.FeatureDescription, &s.GherkinContent, &acceptanceJSON,
		&s.EstimatedEffort, &storyType, &priority, &status, &featureType,
		&projectID, &tagsJSON, &componentsJSON, &feedback, &refinedAt,
		&s.Version, &s.GeneratedAt, &s.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	return buildStory(&s, storyType, priority, status, featureType,
		acceptanceJSON, projectID, tagsJSON, componentsJSON, feedback, refinedAt, deletedAt)
}

// scanStoryWithSnippet scans a search result row (story columns plus snippet).
func scanStoryWithSnippet(rows *sql.Rows) (*story.Story, string, error) {
	var (
		s              story.Story
		storyType      string
		priority       string
		status         string
		featureType    string
		acceptanceJSON sql.NullString
		projectID      sql.NullString
		tagsJSON       sql.NullString
		componentsJSON sql.NullString
		feedback       sql.NullString
		refinedAt      sql.NullInt64
		deletedAt      sql.NullInt64
		snippet        string
	)

	err := rows.Scan(
		&s.ID, &s.FeatureDescription, &s.GherkinContent, &acceptanceJSON,
		&s.EstimatedEffort, &storyType, &priority, &status, &featureType,
		&projectID, &tagsJSON, &componentsJSON, &feedback, &refinedAt,
		&s.Version, &s.GeneratedAt, &s.UpdatedAt, &deletedAt,
		&snippet,
	)
	if err != nil {
		return nil, "", err
	}

	built, err := buildStory(&s, storyType, priority, status, featureType,
		acceptanceJSON, projectID, tagsJSON, componentsJSON, feedback, refinedAt, deletedAt)
	if err != nil {
		return nil, "", err
	}
	return built, snippet, nil
}

func buildStory(s *story.Story, storyType, priority, status, featureType string,
	acceptanceJSON, projectID, tagsJSON, componentsJSON, feedback sql.NullString,
	refinedAt, deletedAt sql.NullInt64,
) (*story.Story, error) {
	s.StoryType = story.Type(storyType)
	s.Priority = story.Priority(priority)
	s.Status = story.Status(status)
	s.FeatureType = story.FeatureType(featureType)
	s.ProjectID = fromNullString(projectID)
	s.RefinementFeedback = fromNullString(feedback)

	if refinedAt.Valid {
		s.RefinedAt = &refinedAt.Int64
	}
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Int64
	}

	if acceptanceJSON.Valid && acceptanceJSON.String != "" {
		if err := json.Unmarshal([]byte(acceptanceJSON.String), &s.AcceptanceCriteria); err != nil {
			return nil, err
		}
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &s.Tags); err != nil {
			return nil, err
		}
	}
	if componentsJSON.Valid && componentsJSON.String != "" {
		if err := json.Unmarshal([]byte(componentsJSON.String), &s.Components); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// marshalNullable marshals a slice to JSON, returning NULL for empty slices.
func marshalNullable(v []string) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// toNullInt64 converts a *int64 to sql.NullInt64.
func toNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
