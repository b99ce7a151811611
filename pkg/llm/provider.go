package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// StructuredResponse wraps a structured-generation result. StructuredOutput is
// the raw JSON body when the model produced valid JSON, nil otherwise. Callers
// decode it into their own schema and decide how to treat a nil.
type StructuredResponse struct {
	Content          string
	StructuredOutput json.RawMessage

	// Token usage for cost tracking
	InputTokens  int
	OutputTokens int

	Model     string
	Provider  string
	LatencyMs int64
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// GenerateStructured asks the model for a JSON object and returns the raw
	// bytes alongside the text content. A provider failure is a *ProviderError,
	// never a panic or a bare transport error.
	GenerateStructured(ctx context.Context, prompt, systemPrompt string, options ...Option) (*StructuredResponse, error)
}

// ProviderError is the typed failure surfaced by providers. Transient marks
// errors worth retrying (timeouts, 5xx); the rest fail fast.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
