// Package llm is the hosted AI gateway used to draft flashcards. Providers
// return JSON that has been checked against the caller's schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output from a hosted model.
type Provider interface {
	// Generate sends the request and returns the model output. When the
	// request carries a Schema the returned Content has been validated
	// against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider targets.
	ModelID() string
}

// Request is a single-turn (or short multi-turn) generation request.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the provider to its native structured
	// output mode. Without it Content is the raw text.
	Schema *Schema

	MaxTokens int

	// Temperature in 0.0..1.0. Zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the model output must satisfy. Name doubles as
// the compiled-schema cache key, so two schemas must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token consumption of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Stop reasons shared by all providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)
