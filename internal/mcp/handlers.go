package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/errors"
	"storyforge/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	client  *ai.Client
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, client *ai.Client, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, client: client, cfg: cfg, baseDir: baseDir}
}

// Request types for each tool

// GenerateRequest represents the arguments for story_generate.
type GenerateRequest struct {
	FeatureDescription string  `json:"feature_description"`
	StoryType          string  `json:"story_type,omitempty"`
	Priority           string  `json:"priority,omitempty"`
	ProjectID          *string `json:"project_id,omitempty"`
}

// RefineRequest represents the arguments for story_refine.
type RefineRequest struct {
	ID       string `json:"id"`
	Feedback string `json:"feedback"`
}

// FetchRequest represents the arguments for story_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ListRequest represents the arguments for story_list.
type ListRequest struct {
	ProjectID      *string `json:"project_id,omitempty"`
	StoryType      *string `json:"story_type,omitempty"`
	Priority       *string `json:"priority,omitempty"`
	Status         *string `json:"status,omitempty"`
	FeatureType    *string `json:"feature_type,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
	IncludeDeleted bool    `json:"include_deleted,omitempty"`
}

// SearchRequest represents the arguments for story_search.
type SearchRequest struct {
	Query          string  `json:"query"`
	ProjectID      *string `json:"project_id,omitempty"`
	Status         *string `json:"status,omitempty"`
	FeatureType    *string `json:"feature_type,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
	IncludeDeleted bool    `json:"include_deleted,omitempty"`
}

// UpdateRequest represents the arguments for story_update.
type UpdateRequest struct {
	ID                 string   `json:"id"`
	GherkinContent     *string  `json:"gherkin_content,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	EstimatedEffort    *int     `json:"estimated_effort,omitempty"`
	StoryType          *string  `json:"story_type,omitempty"`
	Priority           *string  `json:"priority,omitempty"`
	Status             *string  `json:"status,omitempty"`
	ProjectID          *string  `json:"project_id,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

// DeleteRequest represents the arguments for story_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ValidateRequest represents the arguments for story_validate.
type ValidateRequest struct {
	GherkinContent string `json:"gherkin_content"`
}

// SuggestRequest represents the arguments for story_suggest.
type SuggestRequest struct {
	FeatureDescription string `json:"feature_description"`
}

// ExportRequest represents the arguments for story_export.
type ExportRequest struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
	Dir    string `json:"dir,omitempty"`
}

// PurgeRequest represents the arguments for story_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// Handler implementations

// HandleGenerate handles the story_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Generate(ctx, h.db, h.client, h.cfg, ops.GenerateInput{
		FeatureDescription: input.FeatureDescription,
		StoryType:          input.StoryType,
		Priority:           input.Priority,
		ProjectID:          input.ProjectID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRefine handles the story_refine tool call.
func (h *Handlers) HandleRefine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RefineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Refine(ctx, h.db, h.client, h.cfg, ops.RefineInput{
		ID:       input.ID,
		Feedback: input.Feedback,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the story_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the story_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, h.cfg, ops.ListInput{
		ProjectID:      input.ProjectID,
		StoryType:      input.StoryType,
		Priority:       input.Priority,
		Status:         input.Status,
		FeatureType:    input.FeatureType,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the story_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, h.cfg, ops.SearchInput{
		Query:          input.Query,
		ProjectID:      input.ProjectID,
		Status:         input.Status,
		FeatureType:    input.FeatureType,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the story_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.db, ops.UpdateInput{
		ID:                 input.ID,
		GherkinContent:     input.GherkinContent,
		AcceptanceCriteria: input.AcceptanceCriteria,
		EstimatedEffort:    input.EstimatedEffort,
		StoryType:          input.StoryType,
		Priority:           input.Priority,
		Status:             input.Status,
		ProjectID:          input.ProjectID,
		Tags:               input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the story_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleValidate handles the story_validate tool call.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ValidateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Validate(ops.ValidateInput{GherkinContent: input.GherkinContent})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSuggest handles the story_suggest tool call.
func (h *Handlers) HandleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Suggest(ops.SuggestInput{FeatureDescription: input.FeatureDescription})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the story_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.baseDir, ops.ExportInput{
		ID:     input.ID,
		Format: ops.ExportFormat(input.Format),
		Dir:    input.Dir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the story_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sfErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    sfErr.Code,
			"message": sfErr.Message,
			"status":  sfErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if sfErr.Code != errors.ErrInternal && sfErr.Details != nil {
			errorObj["details"] = sfErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
