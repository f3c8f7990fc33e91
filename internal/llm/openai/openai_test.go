package openai

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

func TestGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer oa-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "JSON")
		assert.Equal(t, "prompt", req.Messages[1].Content)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"recommendation\":\"SELL\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := New(llm.Config{APIKey: "oa-key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.GenerateJSON(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"recommendation":"SELL"}`, out)
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.ResponseFormat)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "gpt-4o-mini", req.Model)

		w.Write([]byte(`{"choices":[{"message":{"content":"A short summary."}}]}`))
	}))
	defer srv.Close()

	c, err := New(llm.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.GenerateText(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := New(llm.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "x")
	assert.Error(t, err)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(llm.Config{})
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
