package advisorobs

import (
	"context"
	"errors"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/types"
)

// observableAdvisor wraps an Advisor with observability (logging, tracing & metrics)
type observableAdvisor struct {
	adv     interfaces.Advisor
	metrics *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.Advisor = (*observableAdvisor)(nil)

// Wrap wraps an advisor with observability middleware
func Wrap(adv interfaces.Advisor, m *metrics.Recorder) interfaces.Advisor {
	return &observableAdvisor{adv: adv, metrics: m}
}

func (o *observableAdvisor) Recommend(ctx context.Context, rec types.Record, sig types.Signals) types.Recommendation {
	symbol := rec.Company.Symbol

	timer := logger.StartOperation(ctx, "advisor.Recommend",
		"symbol", symbol,
		"sentiment_score", sig.SentimentScore,
		"trend", sig.Trend,
		"news_count", len(rec.News),
	)
	ctx = timer.GetContext()

	out := o.adv.Recommend(ctx, rec, sig)
	o.metrics.RecordRecommendation(string(out.Action))

	if out.Action == types.ActionError {
		timer.EndWithError(errors.New(out.Justification), "recommendation", string(out.Action))
		return out
	}

	timer.End("recommendation", string(out.Action))
	logger.Decision(ctx, symbol, string(out.Action), out.SentimentScore, out.MarketTrend,
		"risks", len(out.Risks),
	)
	return out
}
