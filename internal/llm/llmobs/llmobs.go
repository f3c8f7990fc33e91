package llmobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/trace"
)

// observableGenerator wraps a Generator with observability (logging, tracing & metrics)
type observableGenerator struct {
	gen      interfaces.Generator
	provider string
	metrics  *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(gen interfaces.Generator, provider string, m *metrics.Recorder) interfaces.Generator {
	return &observableGenerator{gen: gen, provider: provider, metrics: m}
}

func (o *observableGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return o.call(ctx, "text", prompt, o.gen.GenerateText)
}

func (o *observableGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return o.call(ctx, "json", prompt, o.gen.GenerateJSON)
}

func (o *observableGenerator) call(
	ctx context.Context,
	mode string,
	prompt string,
	fn func(context.Context, string) (string, error),
) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", o.provider),
		attribute.String("llm.mode", mode),
		attribute.Int("llm.prompt_chars", len(prompt)),
	)

	// Skip 2: call and the exported method sit between the logger and the caller
	logger.DebugSkip(ctx, 2, "Requesting completion", "provider", o.provider, "mode", mode, "prompt_chars", len(prompt))

	start := time.Now()
	out, err := fn(ctx, prompt)
	elapsed := time.Since(start)
	o.metrics.RecordLLMCall(mode, err == nil, elapsed.Seconds())

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "LLM call failed", err,
			"provider", o.provider,
			"mode", mode,
			"duration_ms", elapsed.Milliseconds(),
		)
		return "", err
	}

	logger.DebugSkip(ctx, 2, "Completion received",
		"provider", o.provider,
		"mode", mode,
		"response_chars", len(out),
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}
