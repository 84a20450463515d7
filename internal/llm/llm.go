// Package llm provides the language-model backend used for structured
// classification and free-text generation.
package llm

import (
	"context"
	"encoding/json"
)

// GenerateRequest asks the backend for free-form prose.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Tool describes a single tool the backend may be forced to invoke. The
// input schema constrains the shape of the structured output.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolRequest asks the backend to answer by invoking the given tool exactly
// once; the tool input is the structured result.
type ToolRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	Tool        Tool
}

// Backend is the language-model collaborator: one structured endpoint and
// one free-text endpoint. Implementations make exactly one outbound call
// per invocation and never retry.
type Backend interface {
	// Generate returns the model's text response.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// CallTool forces a single invocation of req.Tool and returns the raw
	// tool input for fallible decoding by the caller. A response without a
	// tool invocation is an error.
	CallTool(ctx context.Context, req ToolRequest) (json.RawMessage, error)
}
