package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()

	r.RecordFetch("quote", true, 0.1)
	r.RecordFetch("news", false, 0.2)
	r.RecordFetch("news", false, 0.3)
	r.RecordRecommendation("BUY")
	r.RecordSkipped()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchFailures.WithLabelValues("news")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.fetchFailures.WithLabelValues("quote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.recommendations.WithLabelValues("BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skipped))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordFetch("quote", false, 1)
	r.RecordRecommendation("HOLD")
	r.RecordSkipped()
	r.RecordLLMCall("text", true, 1)
	r.RecordPublish(false)
	r.RecordCycle("ok", 1, 1)
	assert.NoError(t, r.WriteTextfile("/nonexistent/x.prom"))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.RecordCycle("ok", 3.5, 1700000000)
	r.RecordLLMCall("json", false, 0.7)

	path := filepath.Join(t.TempDir(), "agent.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "agent_cycle_duration_seconds 3.5")
	assert.Contains(t, string(b), `agent_llm_request_duration_seconds_count{mode="json",status="error"} 1`)
}
