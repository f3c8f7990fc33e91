package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/types"
)

type fakeSource struct {
	delay     time.Duration
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	quoteFn   func(symbol string) (types.Quote, error)
	newsFn    func(symbol string) ([]types.NewsItem, error)
	sentiment func(symbol string) (types.ProviderSentiment, error)
}

func (f *fakeSource) enter() func() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeSource) Quote(_ context.Context, symbol string) (types.Quote, error) {
	defer f.enter()()
	if f.quoteFn != nil {
		return f.quoteFn(symbol)
	}
	return types.Quote{Current: types.Float(float64(len(symbol))), Timestamp: 1}, nil
}

func (f *fakeSource) CompanyNews(_ context.Context, symbol string) ([]types.NewsItem, error) {
	defer f.enter()()
	if f.newsFn != nil {
		return f.newsFn(symbol)
	}
	return []types.NewsItem{{Headline: symbol + " headline"}}, nil
}

func (f *fakeSource) NewsSentiment(_ context.Context, symbol string) (types.ProviderSentiment, error) {
	defer f.enter()()
	if f.sentiment != nil {
		return f.sentiment(symbol)
	}
	return types.ProviderSentiment{Symbol: symbol, CompanyNewsScore: types.Float(0.5)}, nil
}

func companies(symbols ...string) []types.Company {
	out := make([]types.Company, len(symbols))
	for i, s := range symbols {
		out[i] = types.Company{Symbol: s, Name: s + " Inc."}
	}
	return out
}

func TestCollect_OneRecordPerSymbolInOrder(t *testing.T) {
	src := &fakeSource{}
	records := New(src).Collect(context.Background(), companies("IBM", "IONQ", "QBTS"))

	require.Len(t, records, 3)
	for i, sym := range []string{"IBM", "IONQ", "QBTS"} {
		assert.Equal(t, sym, records[i].Company.Symbol)
		assert.Equal(t, float64(len(sym)), *records[i].Quote.Current)
		require.Len(t, records[i].News, 1)
		assert.Equal(t, sym+" headline", records[i].News[0].Headline)
		assert.Equal(t, sym, records[i].Sentiment.Symbol)
	}
}

func TestCollect_FailuresAreIsolated(t *testing.T) {
	src := &fakeSource{
		newsFn: func(symbol string) ([]types.NewsItem, error) {
			if symbol == "IONQ" {
				return nil, errors.New("HTTP 500")
			}
			return []types.NewsItem{{Headline: symbol}}, nil
		},
		quoteFn: func(symbol string) (types.Quote, error) {
			if symbol == "RGTI" {
				return types.Quote{Current: types.Float(9)}, context.DeadlineExceeded
			}
			return types.Quote{Current: types.Float(1), Timestamp: 1}, nil
		},
	}
	m := metrics.New()

	records := New(src, WithMetrics(m)).Collect(context.Background(), companies("IBM", "IONQ", "RGTI"))
	require.Len(t, records, 3)

	// IONQ lost only its news
	assert.False(t, records[1].Quote.IsEmpty())
	assert.NotNil(t, records[1].News)
	assert.Empty(t, records[1].News)
	assert.False(t, records[1].Sentiment.IsEmpty())

	// RGTI lost only its quote, partial data is discarded
	assert.True(t, records[2].Quote.IsEmpty())
	assert.Nil(t, records[2].Quote.Current)
	assert.Len(t, records[2].News, 1)

	assert.False(t, records[0].Quote.IsEmpty())
	assert.Len(t, records[0].News, 1)
}

func TestCollect_PanicBecomesEmptyValue(t *testing.T) {
	src := &fakeSource{
		sentiment: func(symbol string) (types.ProviderSentiment, error) {
			panic("decoder exploded")
		},
	}

	records := New(src).Collect(context.Background(), companies("MSFT"))
	require.Len(t, records, 1)
	assert.True(t, records[0].Sentiment.IsEmpty())
	assert.False(t, records[0].Quote.IsEmpty())
}

func TestCollect_EmptyInput(t *testing.T) {
	records := New(&fakeSource{}).Collect(context.Background(), nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCollect_FetchesRunConcurrently(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}

	start := time.Now()
	records := New(src).Collect(context.Background(), companies("A", "B", "C", "D"))
	elapsed := time.Since(start)

	assert.Len(t, records, 4)
	assert.Less(t, elapsed, 400*time.Millisecond, "12 fetches of 50ms should overlap")
	assert.Greater(t, src.maxSeen.Load(), int32(1))
}

func TestCollect_MaxInFlight(t *testing.T) {
	src := &fakeSource{delay: 10 * time.Millisecond}

	records := New(src, WithMaxInFlight(2)).Collect(context.Background(), companies("A", "B", "C"))

	assert.Len(t, records, 3)
	assert.LessOrEqual(t, src.maxSeen.Load(), int32(2))
	for _, r := range records {
		assert.False(t, r.Quote.IsEmpty())
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "quote", KindQuote.String())
	assert.Equal(t, "news", KindNews.String())
	assert.Equal(t, "sentiment", KindSentiment.String())
}
