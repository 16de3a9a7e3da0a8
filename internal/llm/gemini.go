package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"farm-planner/internal/config"
)

// GeminiClient generates drafts with the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a new Gemini API client. Without an API key the
// client is still returned and every call fails with ErrMissingCredential.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return &GeminiClient{modelName: cfg.GeminiModel}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: cfg.GeminiModel}, nil
}

// GenerateContent sends the prompts to Gemini and joins the text parts of the
// first candidate.
func (c *GeminiClient) GenerateContent(ctx context.Context, req Request) (ContentResponse, error) {
	if c.client == nil {
		return ContentResponse{}, ErrMissingCredential
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(chatTemperature)
	model.SetMaxOutputTokens(chatMaxTokens)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return ContentResponse{}, &ServiceError{Message: "failed to generate content", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ContentResponse{}, &ServiceError{Message: "no output was returned, please try again"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return ContentResponse{}, &ServiceError{Message: "generated content is not text"}
	}

	usage := TokenUsage{Model: c.modelName}
	if md := resp.UsageMetadata; md != nil {
		usage.PromptTokens = int(md.PromptTokenCount)
		usage.CompletionTokens = int(md.CandidatesTokenCount)
		usage.TotalTokens = int(md.TotalTokenCount)
	}
	return ContentResponse{Content: PlainText(sb.String()), Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
