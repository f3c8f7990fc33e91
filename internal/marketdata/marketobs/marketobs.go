package marketobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/trace"
	"llm-investment-agent/internal/types"
)

// observableMarketData wraps MarketData with observability (logging & tracing)
type observableMarketData struct {
	src interfaces.MarketData
}

// Compile-time interface check
var _ interfaces.MarketData = (*observableMarketData)(nil)

// Wrap wraps a market data source with observability middleware
func Wrap(src interfaces.MarketData) interfaces.MarketData {
	return &observableMarketData{src: src}
}

func (o *observableMarketData) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	q, err := o.src.Quote(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		return q, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "empty", q.IsEmpty())
	return q, nil
}

func (o *observableMarketData) CompanyNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.CompanyNews")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	items, err := o.src.CompanyNews(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch company news", err, "symbol", symbol)
		return items, err
	}

	span.SetAttributes(attribute.Int("news.count", len(items)))
	logger.DebugSkip(ctx, 1, "Company news fetched", "symbol", symbol, "count", len(items))
	return items, nil
}

func (o *observableMarketData) NewsSentiment(ctx context.Context, symbol string) (types.ProviderSentiment, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.NewsSentiment")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	s, err := o.src.NewsSentiment(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch news sentiment", err, "symbol", symbol)
		return s, err
	}

	logger.DebugSkip(ctx, 1, "News sentiment fetched", "symbol", symbol, "empty", s.IsEmpty())
	return s, nil
}
