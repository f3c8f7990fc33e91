package gemini

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
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// Client calls the Gemini generateContent API.
type Client struct {
	cfg  llm.Config
	http *api.Client
}

var _ interfaces.Generator = (*Client)(nil)

func New(cfg llm.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", llm.ErrMissingAPIKey)
	}
	cfg = cfg.WithDefaults(DefaultBaseURL, DefaultModel)
	return &Client{
		cfg: cfg,
		http: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("x-goog-api-key", cfg.APIKey),
		),
	}, nil
}

type request struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	Temperature      float32 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type response struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, "")
}

// GenerateJSON sets responseMimeType so the model emits a bare JSON object.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, "application/json")
}

func (c *Client) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	req := request{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			MaxOutputTokens:  c.cfg.MaxTokens,
			Temperature:      c.cfg.Temperature,
			ResponseMimeType: mimeType,
		},
	}
	if c.cfg.System != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: c.cfg.System}}}
	}

	resp, err := c.http.POST(ctx, fmt.Sprintf("/models/%s:generateContent", c.cfg.Model), req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var r response
	if err := resp.ParseJSON(&r); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", errors.New("gemini: no candidates")
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini: %w (finish reason %s)", llm.ErrEmptyResponse, r.Candidates[0].FinishReason)
	}
	return out, nil
}
