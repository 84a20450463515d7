package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"

	defaultMaxTokens = 1024
)

// Client implements Backend against the Anthropic Messages API.
type Client struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewClient creates an API client with the given key. The embedding caller
// is expected to bound call duration through the context.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		client: &http.Client{},
	}
}

// Generate sends a single-turn prompt and concatenates the text blocks of
// the response.
func (c *Client) Generate(
	ctx context.Context,
	req GenerateRequest,
) (string, error) {
	resp, err := c.call(ctx, apiRequest{
		Model:       req.Model,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
		System:      req.System,
		Temperature: req.Temperature,
		Messages: []apiMessage{
			{
				Role: "user",
				Content: []apiContentBlock{
					{Type: "text", Text: req.Prompt},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("response contained no text content")
	}

	return text, nil
}

// CallTool sends a single-turn prompt with one tool attached and tool
// choice forced, returning the raw input of the tool invocation.
func (c *Client) CallTool(
	ctx context.Context,
	req ToolRequest,
) (json.RawMessage, error) {
	resp, err := c.call(ctx, apiRequest{
		Model:       req.Model,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
		System:      req.System,
		Temperature: req.Temperature,
		Messages: []apiMessage{
			{
				Role: "user",
				Content: []apiContentBlock{
					{Type: "text", Text: req.Prompt},
				},
			},
		},
		Tools: []apiTool{
			{
				Name:        req.Tool.Name,
				Description: req.Tool.Description,
				InputSchema: req.Tool.InputSchema,
			},
		},
		ToolChoice: &apiToolChoice{Type: "tool", Name: req.Tool.Name},
	})
	if err != nil {
		return nil, err
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == req.Tool.Name {
			return block.Input, nil
		}
	}

	return nil, fmt.Errorf(
		"response contained no %s tool invocation", req.Tool.Name,
	)
}

// call makes a single request to the Messages API.
func (c *Client) call(
	ctx context.Context,
	reqBody apiRequest,
) (*apiResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

// --- Messages API types ---

type apiRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	System      string         `json:"system,omitempty"`
	Temperature float64        `json:"temperature"`
	Messages    []apiMessage   `json:"messages"`
	Tools       []apiTool      `json:"tools,omitempty"`
	ToolChoice  *apiToolChoice `json:"tool_choice,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type apiToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
