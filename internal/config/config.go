package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// MinDescriptionWords is the minimum word count accepted for a feature
	// description before normalization.
	MinDescriptionWords int `json:"min_description_words"`

	// MaxDescriptionChars is the maximum character count for a feature description.
	MaxDescriptionChars int `json:"max_description_chars"`

	// MaxFeedbackChars is the maximum character count for refinement feedback.
	MaxFeedbackChars int `json:"max_feedback_chars"`

	// DefaultPageSize is the page size used when list/search requests omit limit.
	DefaultPageSize int `json:"default_page_size"`

	// MaxPageSize is the ceiling for list/search limit. Larger requests are clamped.
	MaxPageSize int `json:"max_page_size"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// ClaudeAPIKey enables the Claude provider for AI-assisted generation.
	// The CLAUDE_API_KEY environment variable overrides this value.
	ClaudeAPIKey string `json:"claude_api_key,omitempty"`

	// OpenAIAPIKey enables the OpenAI provider for AI-assisted generation.
	// The OPENAI_API_KEY environment variable overrides this value.
	OpenAIAPIKey string `json:"openai_api_key,omitempty"`

	// AITimeoutSeconds bounds a single provider call. 0 means the default (30s).
	AITimeoutSeconds int `json:"ai_timeout_seconds,omitempty"`

	// AIMaxRetries is the number of retries per provider call before falling back.
	AIMaxRetries int `json:"ai_max_retries,omitempty"`

	// FallbackToTemplate controls whether provider failures fall back to the
	// built-in template generator. Defaults to true; set false to surface
	// provider errors to callers.
	FallbackToTemplate *bool `json:"fallback_to_template,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	fallback := true
	return &Config{
		MinDescriptionWords: 3,
		MaxDescriptionChars: 2000,
		MaxFeedbackChars:    1000,
		DefaultPageSize:     10,
		MaxPageSize:         100,
		AITimeoutSeconds:    30,
		AIMaxRetries:        1,
		FallbackToTemplate:  &fallback,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.storyforge.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides API keys from the environment.
func applyEnv(cfg *Config) {
	if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		cfg.ClaudeAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MinDescriptionWords = pickInt(base.MinDescriptionWords, overlay.MinDescriptionWords)
	result.MaxDescriptionChars = pickInt(base.MaxDescriptionChars, overlay.MaxDescriptionChars)
	result.MaxFeedbackChars = pickInt(base.MaxFeedbackChars, overlay.MaxFeedbackChars)
	result.DefaultPageSize = pickInt(base.DefaultPageSize, overlay.DefaultPageSize)
	result.MaxPageSize = pickInt(base.MaxPageSize, overlay.MaxPageSize)
	result.DBMaxOpenConns = pickInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)
	result.AITimeoutSeconds = pickInt(base.AITimeoutSeconds, overlay.AITimeoutSeconds)
	result.AIMaxRetries = pickInt(base.AIMaxRetries, overlay.AIMaxRetries)

	result.ClaudeAPIKey = pickString(base.ClaudeAPIKey, overlay.ClaudeAPIKey)
	result.OpenAIAPIKey = pickString(base.OpenAIAPIKey, overlay.OpenAIAPIKey)

	// Pointer booleans: overlay wins if set, else base
	result.FallbackToTemplate = base.FallbackToTemplate
	if overlay.FallbackToTemplate != nil {
		result.FallbackToTemplate = overlay.FallbackToTemplate
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// ShouldFallback reports whether provider failures fall back to the template
// generator. Unset means true.
func (c *Config) ShouldFallback() bool {
	return c.FallbackToTemplate == nil || *c.FallbackToTemplate
}

func pickInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
