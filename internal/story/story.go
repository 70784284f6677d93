package story

// FeatureType is the coarse feature category used to select a scenario template.
type FeatureType string

const (
	FeatureAuthentication FeatureType = "authentication"
	FeatureCRUD           FeatureType = "crud"
	FeatureAPI            FeatureType = "api"
	FeatureSearch         FeatureType = "search"
	FeatureFileManagement FeatureType = "file_management"
	FeatureNotification   FeatureType = "notification"
	FeatureGeneral        FeatureType = "general"
)

// Type is the kind of backlog item a story represents.
type Type string

const (
	TypeEpic    Type = "epic"
	TypeFeature Type = "feature"
	TypeStory   Type = "story"
	TypeTask    Type = "task"
)

// ValidTypes lists accepted story types in display order.
var ValidTypes = []Type{TypeEpic, TypeFeature, TypeStory, TypeTask}

// Priority is the story priority level.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ValidPriorities lists accepted priorities in ascending order.
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Status is the lifecycle state of a stored story.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// ValidStatuses lists accepted statuses.
var ValidStatuses = []Status{StatusDraft, StatusReady, StatusInProgress, StatusDone, StatusBlocked}

// Components holds the semantic parts extracted from a feature description.
// Immutable once computed for a given generation call.
type Components struct {
	// Role is the user role (As a ...)
	Role string `json:"role"`

	// Action is the desired action (I want to ...)
	Action string `json:"action"`

	// Benefit is the expected benefit (So that I can ...)
	Benefit string `json:"benefit"`

	// FeatureName is the display name of the feature
	FeatureName string `json:"feature_name"`

	// FeatureType is the detected feature category
	FeatureType FeatureType `json:"feature_type,omitempty"`
}

// Story is a generated user story artifact.
// Fields correspond to the stories table schema.
type Story struct {
	// ID is a ULID that uniquely identifies this story
	ID string `json:"story_id"`

	// FeatureDescription is the original description, unmodified
	FeatureDescription string `json:"feature_description"`

	// GherkinContent is the rendered Gherkin document
	GherkinContent string `json:"gherkin_content"`

	// AcceptanceCriteria is the ordered list of acceptance criteria
	AcceptanceCriteria []string `json:"acceptance_criteria"`

	// EstimatedEffort is the story-point estimate (1, 2, 3, 5, 8, 13)
	EstimatedEffort int `json:"estimated_effort"`

	// StoryType is the kind of backlog item
	StoryType Type `json:"story_type"`

	// Priority is the story priority
	Priority Priority `json:"priority"`

	// Status is the lifecycle state (storage concern; new stories are drafts)
	Status Status `json:"status"`

	// FeatureType is the detected feature category
	FeatureType FeatureType `json:"feature_type"`

	// ProjectID optionally associates the story with a project
	ProjectID *string `json:"project_id,omitempty"`

	// Tags are descriptive labels derived from the description
	Tags []string `json:"tags"`

	// Components are the extracted role/action/benefit parts
	Components Components `json:"components"`

	// GeneratedAt is the Unix timestamp of the original generation
	GeneratedAt int64 `json:"generated_at"`

	// RefinementFeedback is the feedback text of the latest refinement (nullable)
	RefinementFeedback *string `json:"refinement_feedback,omitempty"`

	// RefinedAt is the Unix timestamp of the latest refinement (nullable)
	RefinedAt *int64 `json:"refined_at,omitempty"`

	// Version starts at 1 and increments on each refinement
	Version int `json:"version"`

	// UpdatedAt is the Unix timestamp of the last mutation
	UpdatedAt int64 `json:"updated_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// QualityMetrics describes the structural quality of a Gherkin document.
// Always recomputed from the content, never persisted.
type QualityMetrics struct {
	// QualityScore is the overall score in [0, 1]
	QualityScore float64 `json:"quality_score"`

	// IsValidGherkin reports whether the validator found no issues
	IsValidGherkin bool `json:"is_valid_gherkin"`

	// SyntaxIssues lists the validator's findings
	SyntaxIssues []string `json:"syntax_issues"`

	// ScenarioCount is the number of Scenario: lines
	ScenarioCount int `json:"scenario_count"`

	// LineCount is the number of non-blank lines
	LineCount int `json:"line_count"`

	// Completeness maps check names to pass/fail
	Completeness map[string]bool `json:"completeness"`

	// AnalyzedAt is the Unix timestamp of the analysis
	AnalyzedAt int64 `json:"analyzed_at"`
}

// ParseType validates a story type string. Empty input returns the default.
func ParseType(s string) (Type, bool) {
	if s == "" {
		return TypeStory, true
	}
	for _, t := range ValidTypes {
		if Type(s) == t {
			return t, true
		}
	}
	return "", false
}

// ParsePriority validates a priority string. Empty input returns the default.
func ParsePriority(s string) (Priority, bool) {
	if s == "" {
		return PriorityMedium, true
	}
	for _, p := range ValidPriorities {
		if Priority(s) == p {
			return p, true
		}
	}
	return "", false
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, bool) {
	for _, st := range ValidStatuses {
		if Status(s) == st {
			return st, true
		}
	}
	return "", false
}
