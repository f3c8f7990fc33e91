package marketdata

import (
	"context"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/types"
)

// Sources combines independent quote, news and sentiment providers into one
// MarketData, so that e.g. Kite quotes can be paired with Finnhub news.
type Sources struct {
	Quotes    interfaces.QuoteSource
	News      interfaces.NewsSource
	Sentiment interfaces.SentimentSource
}

var _ interfaces.MarketData = Sources{}

func (s Sources) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	return s.Quotes.Quote(ctx, symbol)
}

func (s Sources) CompanyNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	return s.News.CompanyNews(ctx, symbol)
}

func (s Sources) NewsSentiment(ctx context.Context, symbol string) (types.ProviderSentiment, error) {
	return s.Sentiment.NewsSentiment(ctx, symbol)
}
