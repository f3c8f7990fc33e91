package claude

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
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-3-5-haiku-latest"
	anthropicVersion = "2023-06-01"
)

// Client calls the Anthropic Messages API.
type Client struct {
	cfg  llm.Config
	http *api.Client
}

var _ interfaces.Generator = (*Client)(nil)

func New(cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: %w", llm.ErrMissingAPIKey)
	}
	cfg = cfg.WithDefaults(DefaultBaseURL, DefaultModel)
	return &Client{
		cfg: cfg,
		http: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("x-api-key", cfg.APIKey),
			api.WithHeader("anthropic-version", anthropicVersion),
		),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt, false)
}

// GenerateJSON has no native JSON mode, so the assistant turn is prefilled
// with "{" and the brace is restored on the way out.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt, true)
}

func (c *Client) send(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	req := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		System:      c.cfg.System,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	}
	if jsonMode {
		req.System = strings.TrimSpace(req.System + "\n" + llm.JSONInstruction)
		req.Messages = append(req.Messages, message{Role: "assistant", Content: "{"})
	}

	resp, err := c.http.POST(ctx, "/messages", req)
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var r messagesResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		if len(r.Content) == 0 {
			return "", errors.New("claude: no content blocks")
		}
		return "", fmt.Errorf("claude: %w", llm.ErrEmptyResponse)
	}

	if jsonMode && !strings.HasPrefix(out, "{") {
		out = "{" + out
	}
	return out, nil
}
