package interfaces

import (
	"context"

	"llm-investment-agent/internal/types"
)

type SignalAnalyzer interface {
	Analyze(rec types.Record) types.Signals
	SentimentLabel(score float64) string
}

// Advisor never fails; problems surface as an ERROR recommendation.
type Advisor interface {
	Recommend(ctx context.Context, rec types.Record, sig types.Signals) types.Recommendation
}
