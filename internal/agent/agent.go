package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/report"
	"llm-investment-agent/internal/types"
)

type State string

const (
	StateCollecting State = "COLLECTING"
	StateAnalyzing  State = "ANALYZING"
	StatePersisting State = "PERSISTING"
	StateReporting  State = "REPORTING"
	StateDone       State = "DONE"
)

// CycleResult describes one completed cycle. Recommendations follow the
// configured company order; skipped symbols are absent from it.
type CycleResult struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Records         []types.Record
	Recommendations []types.Recommendation
	Skipped         []string
}

type Agent struct {
	companies []types.Company
	collector interfaces.Collector
	analyzer  interfaces.SignalAnalyzer
	advisor   interfaces.Advisor
	memory    interfaces.MemoryStore
	journal   interfaces.DecisionJournal
	publisher interfaces.Publisher
	metrics   *metrics.Recorder
	out       io.Writer
	workers   int
	now       func() time.Time
}

type Option func(*Agent)

// WithJournal records every recommendation in a decision journal.
func WithJournal(j interfaces.DecisionJournal) Option {
	return func(a *Agent) { a.journal = j }
}

// WithPublisher emits every persisted recommendation.
func WithPublisher(p interfaces.Publisher) Option {
	return func(a *Agent) { a.publisher = p }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithReportWriter sets where the console report goes. Defaults to stdout.
func WithReportWriter(w io.Writer) Option {
	return func(a *Agent) { a.out = w }
}

// WithRecommendWorkers lets up to n recommendations be generated at once.
// Persistence and reporting stay in company order.
func WithRecommendWorkers(n int) Option {
	return func(a *Agent) { a.workers = n }
}

func New(
	companies []types.Company,
	collector interfaces.Collector,
	analyzer interfaces.SignalAnalyzer,
	advisor interfaces.Advisor,
	memory interfaces.MemoryStore,
	opts ...Option,
) *Agent {
	a := &Agent{
		companies: companies,
		collector: collector,
		analyzer:  analyzer,
		advisor:   advisor,
		memory:    memory,
		out:       os.Stdout,
		workers:   1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = 1
	}
	return a
}

// RunCycle collects data for every company, produces a recommendation for
// each one with a quote and stores it. A failed store write aborts the
// cycle; records stored before it stay stored and no report is printed.
func (a *Agent) RunCycle(ctx context.Context) (*CycleResult, error) {
	res := &CycleResult{
		ID:        uuid.NewString(),
		StartedAt: a.now(),
		Skipped:   []string{},
	}

	timer := logger.StartOperation(ctx, "agent.RunCycle", "cycle_id", res.ID, "companies", len(a.companies))
	ctx = timer.GetContext()

	if err := report.CycleStarted(a.out, res.StartedAt); err != nil {
		logger.Warn(ctx, "Failed to write report", "cycle_id", res.ID, "error", err.Error())
	}

	a.enter(ctx, res.ID, StateCollecting)
	res.Records = a.collector.Collect(ctx, a.companies)

	targets := make([]types.Record, 0, len(res.Records))
	for _, rec := range res.Records {
		if !rec.HasQuote() {
			logger.Warn(ctx, "Skipping "+rec.Company.Symbol+": no stock data available",
				"cycle_id", res.ID,
				"symbol", rec.Company.Symbol,
			)
			a.metrics.RecordSkipped()
			res.Skipped = append(res.Skipped, rec.Company.Symbol)
			continue
		}
		targets = append(targets, rec)
	}

	recs := make([]types.Recommendation, len(targets))
	if a.workers > 1 {
		a.recommendConcurrently(ctx, res.ID, targets, recs)
	}

	entries := make([]report.Entry, 0, len(targets))
	for i, rec := range targets {
		if a.workers <= 1 {
			recs[i] = a.recommend(ctx, res.ID, rec)
		}

		if err := a.persist(ctx, res.ID, rec.Company.Symbol, recs[i]); err != nil {
			err = fmt.Errorf("persist %s: %w", rec.Company.Symbol, err)
			timer.EndWithError(err, "persisted", i)
			a.metrics.RecordCycle("error", time.Since(res.StartedAt).Seconds(), a.now().Unix())
			return nil, err
		}
		entries = append(entries, report.Entry{Company: rec.Company, Recommendation: recs[i]})
	}
	res.Recommendations = recs

	a.enter(ctx, res.ID, StateReporting)
	if err := report.Write(a.out, entries); err != nil {
		logger.Warn(ctx, "Failed to write report", "cycle_id", res.ID, "error", err.Error())
	}
	if err := report.CycleCompleted(a.out); err != nil {
		logger.Warn(ctx, "Failed to write report", "cycle_id", res.ID, "error", err.Error())
	}

	res.FinishedAt = a.now()
	a.enter(ctx, res.ID, StateDone)
	a.metrics.RecordCycle("ok", res.FinishedAt.Sub(res.StartedAt).Seconds(), res.FinishedAt.Unix())
	timer.End("recommendations", len(recs), "skipped", len(res.Skipped))

	logger.Info(ctx, "Cycle completed",
		"cycle_id", res.ID,
		"recommendations", len(recs),
		"skipped", len(res.Skipped),
		"duration_ms", res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	)
	return res, nil
}

func (a *Agent) recommend(ctx context.Context, cycleID string, rec types.Record) types.Recommendation {
	symbol := rec.Company.Symbol
	a.enter(ctx, cycleID, StateAnalyzing, "symbol", symbol)

	sig := a.analyzer.Analyze(rec)
	logger.Info(ctx, "Analyzing "+rec.Company.Name+" ("+symbol+")",
		"cycle_id", cycleID,
		"symbol", symbol,
		"news", len(rec.News),
		"sentiment_score", sig.SentimentScore,
		"sentiment", a.analyzer.SentimentLabel(sig.SentimentScore),
		"trend", sig.Trend,
	)

	return a.advisor.Recommend(ctx, rec, sig)
}

// recommendConcurrently fills out[i] for targets[i] using at most a.workers
// goroutines.
func (a *Agent) recommendConcurrently(ctx context.Context, cycleID string, targets []types.Record, out []types.Recommendation) {
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = a.recommend(ctx, cycleID, targets[i])
		}(i)
	}
	wg.Wait()
}

// persist stores rec under the tracked symbol, which may differ from the
// symbol echoed by the model.
func (a *Agent) persist(ctx context.Context, cycleID, symbol string, rec types.Recommendation) error {
	a.enter(ctx, cycleID, StatePersisting, "symbol", symbol)

	err := a.memory.UpdateCompanyData(ctx, symbol, types.MemoryRecord{
		LatestRecommendation: rec,
		LastUpdated:          a.now().Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist recommendation", err, "cycle_id", cycleID, "symbol", symbol)
		return err
	}

	if a.journal != nil {
		if err := a.journal.Append(cycleID, rec); err != nil {
			logger.Warn(ctx, "Failed to append decision log", "cycle_id", cycleID, "symbol", symbol, "error", err.Error())
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, cycleID, rec); err != nil {
			logger.Warn(ctx, "Failed to publish recommendation", "cycle_id", cycleID, "symbol", symbol, "error", err.Error())
		}
	}
	return nil
}

func (a *Agent) enter(ctx context.Context, cycleID string, s State, fields ...any) {
	logger.Info(ctx, "Cycle state", append([]any{"cycle_id", cycleID, "state", string(s)}, fields...)...)
}
