package decisionlog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/types"
)

func newTestJournal(t *testing.T, now time.Time) *Journal {
	t.Helper()
	j := New(t.TempDir())
	j.loc = time.UTC
	j.now = func() time.Time { return now }
	return j
}

func TestAppend_WritesOneLinePerRecommendation(t *testing.T) {
	now := time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC)
	j := newTestJournal(t, now)

	require.NoError(t, j.Append("cycle-1", types.Recommendation{Symbol: "IBM", Action: types.ActionHold, Risks: []string{}}))
	require.NoError(t, j.Append("cycle-1", types.Recommendation{Symbol: "IONQ", Action: types.ActionBuy, Risks: []string{"Market volatility"}}))

	f, err := os.Open(filepath.Join(j.Dir(), "2024-05-08.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "cycle-1", entries[0].CycleID)
	assert.Equal(t, "IONQ", entries[1].Symbol)
	assert.Equal(t, "BUY", entries[1].Action)
	assert.Equal(t, "2024-05-08T15:00:00Z", entries[1].Time)
}

func TestCompressOlder(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	j := newTestJournal(t, now)

	old := filepath.Join(j.Dir(), "2024-05-01.jsonl")
	recent := filepath.Join(j.Dir(), "2024-05-19.jsonl")
	require.NoError(t, os.WriteFile(old, []byte("{\"symbol\":\"IBM\"}\n"), 0o644))
	require.NoError(t, os.WriteFile(recent, []byte("{}\n"), 0o644))
	require.NoError(t, os.Chtimes(old, now.AddDate(0, 0, -19), now.AddDate(0, 0, -19)))
	require.NoError(t, os.Chtimes(recent, now.AddDate(0, 0, -1), now.AddDate(0, 0, -1)))

	n, err := j.CompressOlder(7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)

	gz, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer gz.Close()
	r, err := gzip.NewReader(gz)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "{\"symbol\":\"IBM\"}\n", string(body))
}

func TestCompressOlder_DisabledAndMissingDir(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "does-not-exist"))

	n, err := j.CompressOlder(0)
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = j.CompressOlder(7)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
