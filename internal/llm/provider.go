// Package llm abstracts the outbound LLM call used to enrich quiz
// analyses. One logical operation: send a prompt, get structured JSON
// back. Any shape deviation is surfaced as a typed error so callers can
// fall back to rule-based output.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single collaborator contract. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Complete sends one prompt and returns the model's output. When the
	// request carries a Schema the returned Content is JSON validated
	// against it.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is a single-turn completion request.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the user message.
	Prompt string

	// Schema, when set, requests structured JSON output conforming to it.
	Schema *Schema

	// MaxTokens bounds the response length. Zero means provider default.
	MaxTokens int

	// Temperature in [0,1]. Zero for deterministic classification.
	Temperature float64
}

// Schema describes the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case.
	Name string

	// Description guides the model.
	Description string

	// Definition is the JSON Schema document as a map.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is validated JSON when a Schema was requested, raw text
	// bytes otherwise.
	Content json.RawMessage

	// Model that actually served the request.
	Model string

	// Usage reports token consumption.
	Usage Usage
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
