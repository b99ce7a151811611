package mock

import (
	"context"
	"encoding/json"
	"time"

	"ai-ops-copilot-be/pkg/llm"
)

// Provider is a deterministic LLM stand-in for dry runs and tests. It returns
// FixedJSON when set, otherwise a generic canned reply, and never touches the
// network.
type Provider struct {
	FixedJSON string
	Err       error
}

var _ llm.Provider = &Provider{}

func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	if p.FixedJSON != "" {
		return p.FixedJSON, nil
	}
	return "mock response - no real LLM call made", nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *Provider) GenerateStructured(_ context.Context, _, _ string, _ ...llm.Option) (*llm.StructuredResponse, error) {
	if p.Err != nil {
		return nil, p.Err
	}

	content := p.FixedJSON
	if content == "" {
		content = "{}"
	}

	var structured json.RawMessage
	if json.Valid([]byte(content)) {
		structured = json.RawMessage(content)
	}

	return &llm.StructuredResponse{
		Content:          content,
		StructuredOutput: structured,
		Model:            "mock",
		Provider:         "mock",
		LatencyMs:        time.Millisecond.Milliseconds(),
	}, nil
}
