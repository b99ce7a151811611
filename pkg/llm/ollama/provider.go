package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-ops-copilot-be/pkg/llm"
)

const (
	maxAttempts   = 3
	baseRetryWait = 500 * time.Millisecond
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements Provider
var _ llm.Provider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := o.chat(ctx, history, "", opts...)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (o *OllamaProvider) GenerateStructured(ctx context.Context, prompt, systemPrompt string, opts ...llm.Option) (*llm.StructuredResponse, error) {
	history := make([]llm.Message, 0, 2)
	if systemPrompt != "" {
		history = append(history, llm.Message{Role: "system", Content: systemPrompt})
	}
	history = append(history, llm.Message{Role: "user", Content: prompt})

	start := time.Now()

	resp, err := o.chat(ctx, history, "json", opts...)
	if err != nil {
		return nil, err
	}

	content := resp.Message.Content

	structured := extractJSON(content)

	return &llm.StructuredResponse{
		Content:          content,
		StructuredOutput: structured,
		InputTokens:      resp.PromptEvalCount,
		OutputTokens:     resp.EvalCount,
		Model:            resp.Model,
		Provider:         "ollama",
		LatencyMs:        time.Since(start).Milliseconds(),
	}, nil
}

func (o *OllamaProvider) chat(ctx context.Context, history []llm.Message, format string, opts ...llm.Option) (*ollamaChatResponse, error) {
	// 1. Process Options
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	// 2. Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		ollamaMessages[i] = ollamaMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	// 3. Prepare Payload
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   false,
		Format:   format,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}

	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Err: fmt.Errorf("marshal request: %w", err)}
	}

	// 4. Send Request with bounded retry on transient failures
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, &llm.ProviderError{Provider: "ollama", Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		resp, err := o.doRequest(ctx, payloadBytes)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var provErr *llm.ProviderError
		if !errors.As(err, &provErr) || !provErr.Transient {
			return nil, err
		}
	}

	return nil, lastErr
}

func (o *OllamaProvider) doRequest(ctx context.Context, payload []byte) (*ollamaChatResponse, error) {
	url := o.BaseURL + "/api/chat"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Transient: true, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Transient: true, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.ProviderError{
			Provider:  "ollama",
			Transient: resp.StatusCode >= 500,
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, &llm.ProviderError{Provider: "ollama", Err: fmt.Errorf("decode response: %w", err)}
	}

	return &chatResp, nil
}

// extractJSON pulls the JSON object out of the model response. Models in JSON
// mode usually return bare JSON, but some wrap it in prose or code fences.
func extractJSON(content string) json.RawMessage {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return nil
	}

	candidate := trimmed[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil
	}

	return json.RawMessage(candidate)
}
