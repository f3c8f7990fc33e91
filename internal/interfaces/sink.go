package interfaces

import (
	"context"

	"llm-investment-agent/internal/types"
)

type MemoryStore interface {
	UpdateCompanyData(ctx context.Context, symbol string, rec types.MemoryRecord) error
	GetCompanyData(ctx context.Context, symbol string) (types.MemoryRecord, bool)
}

// DecisionJournal keeps an audit trail of produced recommendations.
type DecisionJournal interface {
	Append(cycleID string, rec types.Recommendation) error
}

type Publisher interface {
	Publish(ctx context.Context, cycleID string, rec types.Recommendation) error
	Close() error
}
