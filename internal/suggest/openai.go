package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	maxSuggestions = 4
	temperature    = 0.7
	maxTokens      = 150

	systemPrompt = "You are a productivity assistant helping break down tasks into actionable steps. " +
		"Provide 4 clear, concise suggestions for completing the task. " +
		"Format your response as a simple list with each suggestion on a new line, no numbers or bullets. " +
		"Keep each suggestion under 10 words if possible."
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAIClient creates a client. Empty baseURL or model fall back to the defaults.
func NewOpenAIClient(baseURL, model string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Complete asks for suggestions for title and returns the parsed lines.
// An empty result is reported as an error.
func (c *OpenAIClient) Complete(ctx context.Context, apiKey, title string) ([]string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "How can I complete this task: " + title},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr openaiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	lines := ParseLines(out.Choices[0].Message.Content)
	if len(lines) == 0 {
		return nil, fmt.Errorf("no usable suggestions in response")
	}
	return lines, nil
}

var listMarkup = regexp.MustCompile(`^[\d\s\-.)*•]+`)

// ParseLines splits completion text into at most four suggestions,
// stripping list numbering and bullets.
func ParseLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimSpace(listMarkup.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
