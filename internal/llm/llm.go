package llm

import (
	"context"
	"errors"
	"fmt"

	"farm-planner/internal/config"
)

// ErrMissingCredential is returned before any request is made when no API
// key is configured for the selected provider.
var ErrMissingCredential = errors.New("draft generation API key is not configured; set LLM_API_KEY (or OPENROUTER_API_KEY) or GEMINI_API_KEY")

// ServiceError reports a failed or unusable upstream response.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("draft generation service error: %d - %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("draft generation service error: %s: %v", e.Message, e.Err)
	default:
		return "draft generation service error: " + e.Message
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Request is a single system + user prompt exchange.
type Request struct {
	System string
	Prompt string
}

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator generates text from a prompt. Implementations make exactly
// one upstream call per invocation.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewFromConfig returns the generator selected by cfg.DraftProvider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.DraftProvider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderChat, "":
		return NewChatClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown draft provider %q", cfg.DraftProvider)
	}
}
