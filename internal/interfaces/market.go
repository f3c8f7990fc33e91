package interfaces

import (
	"context"

	"llm-investment-agent/internal/types"
)

// QuoteSource returns the latest quote for one symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

// NewsSource returns recent company news for one symbol.
type NewsSource interface {
	CompanyNews(ctx context.Context, symbol string) ([]types.NewsItem, error)
}

// SentimentSource returns the provider's aggregated news sentiment.
type SentimentSource interface {
	NewsSentiment(ctx context.Context, symbol string) (types.ProviderSentiment, error)
}

// MarketData is the full per-symbol source set used by the collector.
type MarketData interface {
	QuoteSource
	NewsSource
	SentimentSource
}

type Collector interface {
	Collect(ctx context.Context, companies []types.Company) []types.Record
}
