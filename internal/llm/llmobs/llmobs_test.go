package llmobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/metrics"
)

type stubGen struct {
	text string
	err  error
}

func (s stubGen) GenerateText(context.Context, string) (string, error) { return s.text, s.err }
func (s stubGen) GenerateJSON(context.Context, string) (string, error) { return s.text, s.err }

func TestWrap_PassesThrough(t *testing.T) {
	m := metrics.New()
	g := Wrap(stubGen{text: "ok"}, "GEMINI", m)

	out, err := g.GenerateText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	out, err = g.GenerateJSON(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	assert.Equal(t, 2, testutil.CollectAndCount(m.Registry(), "agent_llm_request_duration_seconds"))
}

func TestWrap_LabelsCallsByMode(t *testing.T) {
	m := metrics.New()
	g := Wrap(stubGen{text: "ok"}, "CLAUDE", m)

	_, _ = g.GenerateText(context.Background(), "p")
	_, _ = g.GenerateJSON(context.Background(), "p")
	_, _ = g.GenerateJSON(context.Background(), "p")

	path := filepath.Join(t.TempDir(), "agent.prom")
	require.NoError(t, m.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(b), `agent_llm_request_duration_seconds_count{mode="text",status="ok"} 1`)
	assert.Contains(t, string(b), `agent_llm_request_duration_seconds_count{mode="json",status="ok"} 2`)
}

func TestWrap_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	g := Wrap(stubGen{text: "partial", err: boom}, "OPENAI", nil)

	out, err := g.GenerateJSON(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out)
}
