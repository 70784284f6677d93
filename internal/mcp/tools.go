package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var generateToolDef = mcp.NewTool("story_generate",
	mcp.WithDescription("Generate a Gherkin user story from a feature description. Returns the stored story with quality metrics."),
	mcp.WithString("feature_description", mcp.Required(),
		mcp.Description("Free-text feature description (at least 3 words)")),
	mcp.WithString("story_type",
		mcp.Description("One of: epic, feature, story, task (default: story)")),
	mcp.WithString("priority",
		mcp.Description("One of: low, medium, high, critical (default: medium)")),
	mcp.WithString("project_id",
		mcp.Description("Optional project identifier to associate the story with")),
)

var refineToolDef = mcp.NewTool("story_refine",
	mcp.WithDescription("Refine an existing story with feedback. Re-generates content and increments the version."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Story ULID")),
	mcp.WithString("feedback", mcp.Required(),
		mcp.Description("Refinement feedback to fold into the story")),
)

var fetchToolDef = mcp.NewTool("story_fetch",
	mcp.WithDescription("Fetch a story by ID with freshly computed quality metrics."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Story ULID")),
	mcp.WithBoolean("include_deleted",
		mcp.Description("Include soft-deleted stories")),
)

var listToolDef = mcp.NewTool("story_list",
	mcp.WithDescription("List stories with optional filters, newest update first."),
	mcp.WithString("project_id", mcp.Description("Filter by project")),
	mcp.WithString("story_type", mcp.Description("Filter by story type")),
	mcp.WithString("priority", mcp.Description("Filter by priority")),
	mcp.WithString("status", mcp.Description("Filter by status")),
	mcp.WithString("feature_type", mcp.Description("Filter by detected feature type")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 10, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted stories")),
)

var searchToolDef = mcp.NewTool("story_search",
	mcp.WithDescription("Full-text search across story descriptions and Gherkin content, ranked by relevance."),
	mcp.WithString("query", mcp.Required(),
		mcp.Description("Search terms")),
	mcp.WithString("project_id", mcp.Description("Filter by project")),
	mcp.WithString("status", mcp.Description("Filter by status")),
	mcp.WithString("feature_type", mcp.Description("Filter by detected feature type")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 10, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted stories")),
)

var updateToolDef = mcp.NewTool("story_update",
	mcp.WithDescription("Apply a partial update to a story. Identity fields never change."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Story ULID")),
	mcp.WithString("gherkin_content", mcp.Description("Replacement Gherkin document")),
	mcp.WithArray("acceptance_criteria", mcp.Description("Replacement acceptance criteria")),
	mcp.WithNumber("estimated_effort", mcp.Description("Story points: 1, 2, 3, 5, 8, or 13")),
	mcp.WithString("story_type", mcp.Description("One of: epic, feature, story, task")),
	mcp.WithString("priority", mcp.Description("One of: low, medium, high, critical")),
	mcp.WithString("status", mcp.Description("One of: draft, ready, in_progress, done, blocked")),
	mcp.WithString("project_id", mcp.Description("New project ID (empty string clears)")),
	mcp.WithArray("tags", mcp.Description("Replacement tag list")),
)

var deleteToolDef = mcp.NewTool("story_delete",
	mcp.WithDescription("Soft-delete a story. Recoverable until purged."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Story ULID")),
)

var validateToolDef = mcp.NewTool("story_validate",
	mcp.WithDescription("Validate Gherkin syntax and compute quality metrics for arbitrary content."),
	mcp.WithString("gherkin_content", mcp.Required(),
		mcp.Description("Gherkin document to check")),
)

var suggestToolDef = mcp.NewTool("story_suggest",
	mcp.WithDescription("Suggest improvements for a feature description, grouped by category."),
	mcp.WithString("feature_description", mcp.Required(),
		mcp.Description("Feature description to analyze")),
)

var exportToolDef = mcp.NewTool("story_export",
	mcp.WithDescription("Export a story to a .feature or .md file."),
	mcp.WithString("id", mcp.Required(),
		mcp.Description("Story ULID")),
	mcp.WithString("format",
		mcp.Description("One of: feature, markdown (default: feature)")),
	mcp.WithString("dir",
		mcp.Description("Target directory (default: the exports directory)")),
)

var purgeToolDef = mcp.NewTool("story_purge",
	mcp.WithDescription("Permanently remove soft-deleted stories."),
	mcp.WithNumber("older_than_days",
		mcp.Description("Only purge stories deleted more than N days ago")),
)
