package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(llm.Config{APIKey: "g-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestGenerateJSON_SetsMimeType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"recommendation\":"},{"text":"\"BUY\"}"}]},"finishReason":"STOP"}]}`))
	})

	out, err := c.GenerateJSON(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"recommendation":"BUY"}`, out)
}

func TestGenerateText_NoMimeType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.GenerationConfig.ResponseMimeType)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Positive themes dominate.  "}]}}]}`))
	})

	out, err := c.GenerateText(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "Positive themes dominate.", out)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("blocked", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		})
		_, err := c.GenerateText(context.Background(), "x")
		assert.ErrorContains(t, err, "SAFETY")
	})

	t.Run("empty candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		})
		_, err := c.GenerateText(context.Background(), "x")
		assert.Error(t, err)
	})

	t.Run("empty text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`))
		})
		_, err := c.GenerateJSON(context.Background(), "x")
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	})

	t.Run("http error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":429}}`, http.StatusTooManyRequests)
		})
		_, err := c.GenerateJSON(context.Background(), "x")
		assert.ErrorContains(t, err, "429")
	})
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(llm.Config{})
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
