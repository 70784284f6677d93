package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/yuin/goldmark"

	"storyforge/internal/ai"
	"storyforge/internal/config"
	"storyforge/internal/errors"
	"storyforge/internal/ops"
)

// Handlers holds shared dependencies for HTTP handlers.
type Handlers struct {
	db      *sql.DB
	client  *ai.Client
	cfg     *config.Config
	baseDir string
	version string
}

// generateRequest is the JSON body for POST /api/v1/stories/generate.
type generateRequest struct {
	FeatureDescription string  `json:"feature_description"`
	StoryType          string  `json:"story_type"`
	Priority           string  `json:"priority"`
	ProjectID          *string `json:"project_id"`
}

// HandleGenerate handles POST /api/v1/stories/generate.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Generate(r.Context(), h.db, h.client, h.cfg, ops.GenerateInput{
		FeatureDescription: req.FeatureDescription,
		StoryType:          req.StoryType,
		Priority:           req.Priority,
		ProjectID:          req.ProjectID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// refineRequest is the JSON body for POST /api/v1/stories/{id}/refine.
type refineRequest struct {
	Feedback string `json:"feedback"`
}

// HandleRefine handles POST /api/v1/stories/{id}/refine.
func (h *Handlers) HandleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Refine(r.Context(), h.db, h.client, h.cfg, ops.RefineInput{
		ID:       r.PathValue("id"),
		Feedback: req.Feedback,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleFetch handles GET /api/v1/stories/{id}.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleList handles GET /api/v1/stories.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, h.cfg, ops.ListInput{
		ProjectID:      ptrString(r.URL.Query().Get("project_id")),
		StoryType:      ptrString(r.URL.Query().Get("story_type")),
		Priority:       ptrString(r.URL.Query().Get("priority")),
		Status:         ptrString(r.URL.Query().Get("status")),
		FeatureType:    ptrString(r.URL.Query().Get("feature_type")),
		Limit:          parseIntParam(r, "limit", 0),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSearch handles GET /api/v1/stories/search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Search(r.Context(), h.db, h.cfg, ops.SearchInput{
		Query:          r.URL.Query().Get("q"),
		ProjectID:      ptrString(r.URL.Query().Get("project_id")),
		Status:         ptrString(r.URL.Query().Get("status")),
		FeatureType:    ptrString(r.URL.Query().Get("feature_type")),
		Limit:          parseIntParam(r, "limit", 0),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// updateRequest is the JSON body for PUT /api/v1/stories/{id}.
// Absent fields leave the story unchanged.
type updateRequest struct {
	GherkinContent     *string  `json:"gherkin_content"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	EstimatedEffort    *int     `json:"estimated_effort"`
	StoryType          *string  `json:"story_type"`
	Priority           *string  `json:"priority"`
	Status             *string  `json:"status"`
	ProjectID          *string  `json:"project_id"`
	Tags               []string `json:"tags"`
}

// HandleUpdate handles PUT /api/v1/stories/{id}.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Update(r.Context(), h.db, ops.UpdateInput{
		ID:                 r.PathValue("id"),
		GherkinContent:     req.GherkinContent,
		AcceptanceCriteria: req.AcceptanceCriteria,
		EstimatedEffort:    req.EstimatedEffort,
		StoryType:          req.StoryType,
		Priority:           req.Priority,
		Status:             req.Status,
		ProjectID:          req.ProjectID,
		Tags:               req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleDelete handles DELETE /api/v1/stories/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// purgeRequest is the JSON body for POST /api/v1/stories/purge.
type purgeRequest struct {
	OlderThanDays *int `json:"older_than_days"`
}

// HandlePurge handles POST /api/v1/stories/purge.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Purge(r.Context(), h.db, ops.PurgeInput{OlderThanDays: req.OlderThanDays})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// validateRequest is the JSON body for POST /api/v1/stories/validate.
type validateRequest struct {
	GherkinContent string `json:"gherkin_content"`
}

// HandleValidate handles POST /api/v1/stories/validate.
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Validate(ops.ValidateInput{GherkinContent: req.GherkinContent})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// suggestRequest is the JSON body for POST /api/v1/stories/suggestions.
type suggestRequest struct {
	FeatureDescription string `json:"feature_description"`
}

// HandleSuggest handles POST /api/v1/stories/suggestions.
func (h *Handlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Suggest(ops.SuggestInput{FeatureDescription: req.FeatureDescription})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// exportRequest is the JSON body for POST /api/v1/stories/{id}/export.
type exportRequest struct {
	Format string `json:"format"`
	Dir    string `json:"dir"`
}

// HandleExport handles POST /api/v1/stories/{id}/export.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := ops.Export(r.Context(), h.db, h.baseDir, ops.ExportInput{
		ID:     r.PathValue("id"),
		Format: ops.ExportFormat(req.Format),
		Dir:    req.Dir,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandlePreview handles GET /api/v1/stories/{id}/preview.
// It renders the story's markdown representation as an HTML fragment.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             r.PathValue("id"),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	md := ops.RenderMarkdown(result.Story)
	var buf bytes.Buffer
	if convErr := goldmark.Convert([]byte(md), &buf); convErr != nil {
		buf.Reset()
		buf.WriteString(template.HTMLEscapeString(md))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// healthResponse is the payload for GET /api/v1/system/health.
type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
	Enhanced bool   `json:"enhanced"`
}

// HandleHealth handles GET /api/v1/system/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeError(w, errors.NewInternal(err))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  h.version,
		Provider: h.client.ProviderName(),
		Enhanced: h.client.Enhanced(),
	})
}

// decodeBody decodes a JSON request body into dst. On failure it writes an
// error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, errors.NewInvalidRequest("invalid JSON body"))
		return false
	}
	return true
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorPayload is the JSON error envelope shared by all endpoints.
type errorPayload struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Details map[string]any   `json:"details,omitempty"`
}

// writeError writes an error as a JSON response. Internal error details are
// never exposed to clients.
func writeError(w http.ResponseWriter, err error) {
	var cErr *errors.Error
	if !stderrors.As(err, &cErr) {
		cErr = errors.NewInternal(err)
	}

	payload := errorPayload{
		Code:    cErr.Code,
		Message: cErr.Message,
		Status:  cErr.Status,
	}
	if cErr.Code != errors.ErrInternal {
		payload.Details = cErr.Details
	}

	writeJSON(w, cErr.Status, map[string]errorPayload{"error": payload})
}

// ptrString returns nil for an empty string, otherwise a pointer to s.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseIntParam parses an integer query parameter, returning def on absence
// or parse failure.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// parseBoolParam parses a boolean query parameter, treating "1" and "true"
// as true.
func parseBoolParam(r *http.Request, name string) bool {
	raw := r.URL.Query().Get(name)
	return raw == "1" || raw == "true"
}
