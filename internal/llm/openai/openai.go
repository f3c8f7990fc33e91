package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"llm-investment-agent/internal/api"
	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// Client calls the OpenAI chat completions API.
type Client struct {
	cfg  llm.Config
	http *api.Client
}

var _ interfaces.Generator = (*Client)(nil)

func New(cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", llm.ErrMissingAPIKey)
	}
	cfg = cfg.WithDefaults(DefaultBaseURL, DefaultModel)
	return &Client{
		cfg: cfg,
		http: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("Authorization", "Bearer "+cfg.APIKey),
		),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, false)
}

// GenerateJSON uses response_format json_object. The API requires the word
// JSON to appear in the messages, so the instruction is added to the system
// prompt.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, true)
}

func (c *Client) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	system := c.cfg.System
	if jsonMode {
		system = strings.TrimSpace(system + "\n" + llm.JSONInstruction)
	}

	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if system != "" {
		req.Messages = append(req.Messages, message{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, message{Role: "user", Content: prompt})
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	resp, err := c.http.POST(ctx, "/chat/completions", req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	var r chatResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("openai: %w", llm.ErrEmptyResponse)
	}
	return out, nil
}
