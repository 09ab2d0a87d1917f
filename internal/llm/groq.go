// Package llm calls an OpenAI-compatible chat-completion API. The HTTP
// layer depends only on the Completer interface; GroqClient is the concrete
// upstream used in production.
package llm

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

	"github.com/lucaf1-15/lucai-backend/internal/models"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is used when a request does not name a model.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
	defaultTimeout     = 60 * time.Second
)

var (
	// ErrUnauthorized indicates the upstream rejected the configured API key.
	ErrUnauthorized = errors.New("llm: upstream rejected api key")
	// ErrRateLimited indicates the upstream is rate limiting this service.
	ErrRateLimited = errors.New("llm: upstream rate limit exceeded")
)

// Usage reports upstream token accounting for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the assistant reply plus usage for one exchange.
type Completion struct {
	Message models.Message `json:"message"`
	Usage   Usage          `json:"usage"`
}

// Completer produces a chat completion for a conversation.
type Completer interface {
	Complete(ctx context.Context, model string, messages []models.Message) (*Completion, error)
}

// GroqClient calls Groq's OpenAI-compatible chat-completion API.
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient constructs a GroqClient. Empty baseURL and model fall back
// to the Groq defaults.
func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &GroqClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// completionRequest is the wire request for /chat/completions.
type completionRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	TopP        float64          `json:"top_p"`
	Stream      bool             `json:"stream"`
}

// completionResponse is the wire response for /chat/completions.
type completionResponse struct {
	Choices []struct {
		Message      models.Message `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the conversation upstream and returns the assistant reply.
func (g *GroqClient) Complete(ctx context.Context, model string, messages []models.Message) (*Completion, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = g.model
	}
	payload, errMarshal := json.Marshal(completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        1,
		Stream:      false,
	})
	if errMarshal != nil {
		return nil, fmt.Errorf("llm: encode request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if errReq != nil {
		return nil, fmt.Errorf("llm: build request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, errDo := g.client.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("llm: request failed: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return nil, fmt.Errorf("llm: read response: %w", errRead)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("llm: upstream status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed completionResponse
	if errUnmarshal := json.Unmarshal(body, &parsed); errUnmarshal != nil {
		return nil, fmt.Errorf("llm: decode response: %w", errUnmarshal)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llm: upstream error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("llm: empty completion")
	}
	return &Completion{Message: parsed.Choices[0].Message, Usage: parsed.Usage}, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n]
	}
	return s
}
