package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Provider generates Gherkin content from a feature description.
// Implementations call an external model API; failures are recoverable
// because the caller falls back to template generation.
type Provider interface {
	// Name identifies the provider ("claude" or "openai").
	Name() string

	// GenerateGherkin returns a complete Gherkin document for the description.
	GenerateGherkin(ctx context.Context, description string) (string, error)
}

const gherkinPrompt = `Generate a Gherkin user story for the following feature description.

Feature Description:
%s

Requirements:
- Start with a "Feature:" line naming the feature
- Include the user story header (As a / I want to / So that I can)
- Include at least 2 "Scenario:" blocks, each with Given, When, and Then steps
- Indent scenario lines with 2 spaces and step lines with 4 spaces

Respond ONLY with the Gherkin document. Do not include markdown fences or explanations.`

const (
	defaultClaudeBaseURL = "https://api.anthropic.com"
	defaultOpenAIBaseURL = "https://api.openai.com"

	claudeModel = "claude-3-5-sonnet-20241022"
	openAIModel = "gpt-4o-mini"

	maxResponseTokens = 1024
)

// claudeProvider calls the Anthropic Messages API.
type claudeProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func (p *claudeProvider) Name() string { return "claude" }

func (p *claudeProvider) GenerateGherkin(ctx context.Context, description string) (string, error) {
	reqBody := map[string]any{
		"model":      claudeModel,
		"max_tokens": maxResponseTokens,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(gherkinPrompt, description)},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode API response: %w", err)
	}
	if len(apiResponse.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return cleanResponse(apiResponse.Content[0].Text), nil
}

// openaiProvider calls the OpenAI Chat Completions API.
type openaiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func (p *openaiProvider) Name() string { return "openai" }

func (p *openaiProvider) GenerateGherkin(ctx context.Context, description string) (string, error) {
	reqBody := map[string]any{
		"model":      openAIModel,
		"max_tokens": maxResponseTokens,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(gherkinPrompt, description)},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode API response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return cleanResponse(apiResponse.Choices[0].Message.Content), nil
}

// cleanResponse strips markdown fences a model may wrap around the document.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```gherkin")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
