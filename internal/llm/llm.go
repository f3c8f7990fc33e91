package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("llm: api key not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrNoJSONObject  = errors.New("llm: no JSON object in response")
)

// Config is shared by all provider clients.
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	System      string
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults(baseURL, model string) Config {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// JSONInstruction is appended to prompts for providers without a native
// JSON mode, and to the system prompt for those that need the word "JSON".
const JSONInstruction = "Respond ONLY with a single valid JSON object. Do not wrap it in markdown."

// ExtractJSONObject returns the JSON object contained in text. Markdown code
// fences and surrounding prose are stripped.
func ExtractJSONObject(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", ErrEmptyResponse
	}

	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		if nl := strings.IndexByte(t, '\n'); nl >= 0 {
			// drop the language tag line, e.g. ```json
			if tag := strings.TrimSpace(t[:nl]); !strings.HasPrefix(tag, "{") {
				t = t[nl+1:]
			}
		}
		t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
	}

	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return t, nil
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoJSONObject, truncate(t, 80))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
