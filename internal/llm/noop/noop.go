package noop

import (
	"context"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
)

// Summary is returned for every text request.
const Summary = "News summary unavailable: no language model configured."

const holdJSON = `{"recommendation":"HOLD","justification":"No language model configured; defaulting to HOLD.","risks":[]}`

// Generator is a fallback used when no LLM is configured. It always
// recommends HOLD.
type Generator struct{}

var _ interfaces.Generator = Generator{}

func New() Generator {
	return Generator{}
}

func (Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	logger.Debug(ctx, "Noop generator called for text")
	return Summary, nil
}

func (Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	logger.Debug(ctx, "Noop generator called - always returns HOLD")
	return holdJSON, nil
}
