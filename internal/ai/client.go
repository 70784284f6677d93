package ai

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storyforge/internal/config"
	"storyforge/internal/errors"
	"storyforge/internal/story"
)

// Client generates stories, preferring an AI provider when one is configured
// and falling back to the deterministic template generator on failure.
// Provider selection order: claude, then openai, then template-only.
type Client struct {
	provider   Provider
	generator  *story.Generator
	fallback   bool
	maxRetries int
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// WithHTTPClient overrides the default HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = l }
}

// WithBaseURL overrides the provider API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = u }
}

// New creates a Client from configuration.
func New(cfg *config.Config, opts ...Option) *Client {
	cc := &clientConfig{}
	for _, opt := range opts {
		opt(cc)
	}

	logger := cc.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := cc.httpClient
	if httpClient == nil {
		timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var provider Provider
	switch {
	case cfg.ClaudeAPIKey != "":
		baseURL := cc.baseURL
		if baseURL == "" {
			baseURL = defaultClaudeBaseURL
		}
		provider = &claudeProvider{apiKey: cfg.ClaudeAPIKey, baseURL: baseURL, httpClient: httpClient}
	case cfg.OpenAIAPIKey != "":
		baseURL := cc.baseURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		provider = &openaiProvider{apiKey: cfg.OpenAIAPIKey, baseURL: baseURL, httpClient: httpClient}
	}

	maxRetries := cfg.AIMaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		provider:   provider,
		generator:  story.NewGenerator(),
		fallback:   cfg.ShouldFallback(),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Enhanced reports whether an AI provider is configured.
func (c *Client) Enhanced() bool {
	return c.provider != nil
}

// ProviderName returns the active provider name, or "template" when none is configured.
func (c *Client) ProviderName() string {
	if c.provider == nil {
		return "template"
	}
	return c.provider.Name()
}

// Generate produces a story for the description. The template generator always
// supplies the structural fields (components, effort, tags); when a provider is
// configured its Gherkin replaces the template's if it passes validation.
func (c *Client) Generate(ctx context.Context, description string, storyType story.Type, priority story.Priority) (*story.Story, error) {
	s, err := c.generator.Generate(description, storyType, priority)
	if err != nil {
		return nil, err
	}

	if c.provider == nil {
		return s, nil
	}

	content, err := c.generateWithRetry(ctx, description)
	if err != nil {
		if !c.fallback {
			return nil, errors.NewProviderFailure(c.provider.Name(), err)
		}
		c.logger.Warn("provider failed, using template generation",
			"provider", c.provider.Name(), "error", err)
		return s, nil
	}

	if result := story.ValidateGherkin(content); !result.Valid {
		c.logger.Warn("provider returned invalid gherkin, using template generation",
			"provider", c.provider.Name(), "issues", result.Issues)
		return s, nil
	}

	s.GherkinContent = content
	return s, nil
}

// Refine re-generates a story's Gherkin with feedback folded in.
// Template structural refinement always runs; provider content replaces the
// Gherkin when available and valid.
func (c *Client) Refine(ctx context.Context, original *story.Story, feedback string) (*story.Story, error) {
	refined, err := c.generator.Refine(original, feedback)
	if err != nil {
		return nil, err
	}

	if c.provider == nil {
		return refined, nil
	}

	combined := original.FeatureDescription + "\n\nRefinement feedback: " + feedback
	content, err := c.generateWithRetry(ctx, combined)
	if err != nil {
		if !c.fallback {
			return nil, errors.NewProviderFailure(c.provider.Name(), err)
		}
		c.logger.Warn("provider failed, using template refinement",
			"provider", c.provider.Name(), "error", err)
		return refined, nil
	}

	if result := story.ValidateGherkin(content); !result.Valid {
		c.logger.Warn("provider returned invalid gherkin, using template refinement",
			"provider", c.provider.Name(), "issues", result.Issues)
		return refined, nil
	}

	refined.GherkinContent = content
	return refined, nil
}

func (c *Client) generateWithRetry(ctx context.Context, description string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, err := c.provider.GenerateGherkin(ctx, description)
		if err == nil {
			return content, nil
		}
		lastErr = err
		c.logger.Debug("provider attempt failed",
			"provider", c.provider.Name(), "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
