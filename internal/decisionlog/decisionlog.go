package decisionlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/types"
)

const ext = ".jsonl"

// Entry is one line of the daily decision file.
type Entry struct {
	Time           string   `json:"time"`
	CycleID        string   `json:"cycle_id"`
	Symbol         string   `json:"symbol"`
	Action         string   `json:"action"`
	Justification  string   `json:"justification"`
	Risks          []string `json:"risks"`
	SentimentScore float64  `json:"sentiment_score"`
	MarketTrend    string   `json:"market_trend"`
}

// Journal appends every recommendation to a per-day JSON lines file under
// dir. Files are named by the local date, e.g. logs/decisions/2024-05-08.jsonl.
type Journal struct {
	mu  sync.Mutex
	dir string
	loc *time.Location
	now func() time.Time
}

var _ interfaces.DecisionJournal = (*Journal)(nil)

func New(dir string) *Journal {
	if dir == "" {
		dir = filepath.Join("logs", "decisions")
	}
	return &Journal{dir: dir, loc: time.Local, now: time.Now}
}

func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.Format(time.DateOnly)+ext)
}

// Append writes rec as one JSON line.
func (j *Journal) Append(cycleID string, rec types.Recommendation) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().In(j.loc)
	e := Entry{
		Time:           now.Format(time.RFC3339),
		CycleID:        cycleID,
		Symbol:         rec.Symbol,
		Action:         string(rec.Action),
		Justification:  rec.Justification,
		Risks:          rec.Risks,
		SentimentScore: rec.SentimentScore,
		MarketTrend:    rec.MarketTrend,
	}

	p := j.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create decision log dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files last modified more than retentionDays ago
// and removes the originals. Files that cannot be processed are left alone.
// It returns how many files were compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0

	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// a missing log dir just means nothing to compress
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(p, ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if gzipFile(p, gz) == nil {
			_ = os.Remove(p)
			compressed++
		}
		return nil
	})
	return compressed, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	_, copyErr := io.Copy(gw, in)
	closeErr := gw.Close()
	fileErr := out.Close()

	if err := firstErr(copyErr, closeErr, fileErr); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
