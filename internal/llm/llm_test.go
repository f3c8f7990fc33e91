package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"padded", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObject_Errors(t *testing.T) {
	_, err := ExtractJSONObject("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ExtractJSONObject("I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{BaseURL: "http://x/v1/"}.WithDefaults("http://default", "m1")
	assert.Equal(t, "http://x/v1", c.BaseURL)
	assert.Equal(t, "m1", c.Model)
	assert.Equal(t, 1024, c.MaxTokens)
	assert.NotZero(t, c.Timeout)
}
