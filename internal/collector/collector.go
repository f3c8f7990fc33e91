package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/trace"
	"llm-investment-agent/internal/types"
)

// Kind identifies which of the three per-symbol fetches a task performs.
type Kind int

const (
	KindQuote Kind = iota
	KindNews
	KindSentiment

	kindsPerSymbol = 3
)

func (k Kind) String() string {
	switch k {
	case KindQuote:
		return "quote"
	case KindNews:
		return "news"
	case KindSentiment:
		return "sentiment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// task tags one fetch with the slot it owns and the symbol it belongs to.
// Symbol i owns slots 3i, 3i+1 and 3i+2.
type task struct {
	slot        int
	symbolIndex int
	kind        Kind
}

// result is written exactly once, by the goroutine that owns the slot.
type result struct {
	quote     types.Quote
	news      []types.NewsItem
	sentiment types.ProviderSentiment
	err       error
}

// Collector fans out all fetches for a cycle at once and joins them.
type Collector struct {
	src         interfaces.MarketData
	maxInFlight int
	metrics     *metrics.Recorder
}

var _ interfaces.Collector = (*Collector)(nil)

type Option func(*Collector)

// WithMaxInFlight bounds the number of concurrent fetches. Zero means unbounded.
func WithMaxInFlight(n int) Option {
	return func(c *Collector) {
		c.maxInFlight = n
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

func New(src interfaces.MarketData, opts ...Option) *Collector {
	c := &Collector{src: src}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns one Record per company, in input order. A failed fetch
// leaves the empty value for its kind; it never affects sibling fetches.
func (c *Collector) Collect(ctx context.Context, companies []types.Company) []types.Record {
	ctx, span := trace.StartSpan(ctx, "collector.Collect")
	defer span.End()

	tasks := make([]task, 0, len(companies)*kindsPerSymbol)
	for i := range companies {
		for k := KindQuote; k <= KindSentiment; k++ {
			tasks = append(tasks, task{slot: len(tasks), symbolIndex: i, kind: k})
		}
	}

	results := make([]result, len(tasks))

	var sem chan struct{}
	if c.maxInFlight > 0 {
		sem = make(chan struct{}, c.maxInFlight)
	}

	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			results[t.slot] = c.fetch(ctx, companies[t.symbolIndex].Symbol, t.kind)
		}(t)
	}
	wg.Wait()

	records := make([]types.Record, len(companies))
	for i, co := range companies {
		records[i] = types.Record{Company: co, News: []types.NewsItem{}}
	}
	for _, t := range tasks {
		r := results[t.slot]
		if r.err != nil {
			logger.Warn(ctx, "Fetch failed, using empty value",
				"symbol", companies[t.symbolIndex].Symbol,
				"kind", t.kind.String(),
				"error", r.err)
			continue
		}
		rec := &records[t.symbolIndex]
		switch t.kind {
		case KindQuote:
			rec.Quote = r.quote
		case KindNews:
			if r.news != nil {
				rec.News = r.news
			}
		case KindSentiment:
			rec.Sentiment = r.sentiment
		}
	}

	logger.Info(ctx, "Collection complete", "symbols", len(companies), "fetches", len(tasks))
	return records
}

// fetch runs a single source call, converting panics into errors.
func (c *Collector) fetch(ctx context.Context, symbol string, kind Kind) (r result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r = result{err: fmt.Errorf("panic in %s fetch: %v", kind, p)}
		}
		c.metrics.RecordFetch(kind.String(), r.err == nil, time.Since(start).Seconds())
	}()

	switch kind {
	case KindQuote:
		r.quote, r.err = c.src.Quote(ctx, symbol)
	case KindNews:
		var items []types.NewsItem
		items, r.err = c.src.CompanyNews(ctx, symbol)
		if r.err == nil {
			r.news = make([]types.NewsItem, len(items))
			copy(r.news, items)
		}
	case KindSentiment:
		r.sentiment, r.err = c.src.NewsSentiment(ctx, symbol)
	default:
		r.err = fmt.Errorf("unknown fetch kind %d", int(kind))
	}
	if r.err != nil {
		r = result{err: r.err}
	}
	return r
}
