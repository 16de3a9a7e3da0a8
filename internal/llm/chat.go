package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"farm-planner/internal/config"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 2000
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint such as
// OpenRouter.
type ChatClient struct {
	endpoint   string
	apiKey     string
	model      string
	referer    string
	title      string
	httpClient *http.Client
}

// NewChatClient creates a new chat completions client. Requests carry no
// deadline of their own and end when the caller's context does.
func NewChatClient(cfg *config.Config) *ChatClient {
	return &ChatClient{
		endpoint: cfg.LLMEndpoint,
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		referer:  cfg.LLMReferer,
		title:    cfg.LLMTitle,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends the system and user prompts and returns the first
// choice's message content.
func (c *ChatClient) GenerateContent(ctx context.Context, req Request) (ContentResponse, error) {
	if c.apiKey == "" {
		return ContentResponse{}, ErrMissingCredential
	}

	jsonBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ContentResponse{}, &ServiceError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, &ServiceError{StatusCode: resp.StatusCode, Message: errorMessage(resp, bodyBytes)}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return ContentResponse{}, &ServiceError{Message: "failed to decode response", Err: err}
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return ContentResponse{}, &ServiceError{Message: "no output was returned, please try again"}
	}

	model := chatResp.Model
	if model == "" {
		model = c.model
	}
	return ContentResponse{
		Content: PlainText(chatResp.Choices[0].Message.Content),
		Usage: TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
			Model:            model,
		},
	}, nil
}

// errorMessage prefers the API's error.message and falls back to the status text.
func errorMessage(resp *http.Response, body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return http.StatusText(resp.StatusCode)
}
