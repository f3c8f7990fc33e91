package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/llm"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/types"
)

const (
	NoNewsSummary     = "No recent news available."
	SummaryFailedText = "Error in LLM response."

	DefaultSummaryHeadlines = 5
	DefaultAnalystFocus     = "quantum computing"
)

// ErrInvalidRecommendation is returned when the model answer lacks a BUY,
// HOLD or SELL action, a justification, or a list of risks.
var ErrInvalidRecommendation = errors.New("invalid recommendation")

// errorRisks are reported on every ERROR recommendation.
var errorRisks = []string{"API Error", "LLM parsing error"}

type Config struct {
	// SummaryHeadlines caps how many headlines go into the summary prompt.
	SummaryHeadlines int
	// AnalystFocus names the sector the model is told it specialises in.
	AnalystFocus string
}

// Engine turns one symbol's record and signals into a Recommendation with
// two model calls: a free-text news summary and a JSON recommendation.
type Engine struct {
	gen interfaces.Generator
	cfg Config
}

var _ interfaces.Advisor = (*Engine)(nil)

func New(gen interfaces.Generator, cfg Config) *Engine {
	if cfg.SummaryHeadlines <= 0 {
		cfg.SummaryHeadlines = DefaultSummaryHeadlines
	}
	if strings.TrimSpace(cfg.AnalystFocus) == "" {
		cfg.AnalystFocus = DefaultAnalystFocus
	}
	return &Engine{gen: gen, cfg: cfg}
}

// Recommend never fails. Every problem along the way, including a panic in
// the generator, is folded into an ERROR recommendation that still carries
// the locally computed score, trend and summary.
func (e *Engine) Recommend(ctx context.Context, rec types.Record, sig types.Signals) (out types.Recommendation) {
	symbol := rec.Company.Symbol
	summary := ""

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.ErrorWithErr(ctx, "Recovered panic while generating recommendation", err, "symbol", symbol)
			out = errorRecommendation(symbol, err, sig, summary)
		}
	}()

	summary = e.Summarize(ctx, rec)

	prompt, err := e.Prompt(rec, sig, summary)
	if err != nil {
		return errorRecommendation(symbol, err, sig, summary)
	}

	raw, err := e.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return errorRecommendation(symbol, err, sig, summary)
	}

	p, err := parse(raw)
	if err != nil {
		logger.Warn(ctx, "Unusable recommendation from model", "symbol", symbol, "error", err.Error())
		return errorRecommendation(symbol, err, sig, summary)
	}

	return complete(p, symbol, sig, summary)
}

// Summarize asks the model to summarise recent headlines. It returns
// NoNewsSummary when there is nothing to summarise and SummaryFailedText
// when the model call fails.
func (e *Engine) Summarize(ctx context.Context, rec types.Record) string {
	lines := headlines(rec.News, e.cfg.SummaryHeadlines)
	if len(lines) == 0 {
		return NoNewsSummary
	}

	var buf bytes.Buffer
	err := summaryTmpl.Execute(&buf, summaryData{
		Name:      rec.Company.Name,
		Symbol:    rec.Company.Symbol,
		Headlines: lines,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to render summary prompt", err, "symbol", rec.Company.Symbol)
		return SummaryFailedText
	}

	text, err := e.gen.GenerateText(ctx, buf.String())
	if err != nil {
		logger.Warn(ctx, "News summary failed", "symbol", rec.Company.Symbol, "error", err.Error())
		return SummaryFailedText
	}
	if text = strings.TrimSpace(text); text == "" {
		return SummaryFailedText
	}
	return text
}

// Prompt renders the recommendation prompt. Output is deterministic for a
// given input.
func (e *Engine) Prompt(rec types.Record, sig types.Signals, summary string) (string, error) {
	var buf bytes.Buffer
	if err := recommendationTmpl.Execute(&buf, newPromptData(e.cfg.AnalystFocus, rec, sig, summary)); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// wireRecommendation accepts the loosely typed JSON models tend to produce:
// risks as a list or a single string, the score as a number or a string.
type wireRecommendation struct {
	CompanySymbol  string          `json:"company_symbol"`
	Recommendation string          `json:"recommendation"`
	Justification  string          `json:"justification"`
	Risks          json.RawMessage `json:"risks"`
	Score          json.RawMessage `json:"current_sentiment_score"`
	MarketTrend    string          `json:"market_trend"`
	NewsSummary    string          `json:"news_summary"`
}

// parsed is a structurally valid model answer. hasScore tells an explicit
// 0 apart from a missing score.
type parsed struct {
	rec      types.Recommendation
	hasScore bool
}

// parse extracts and validates the recommendation object from raw model
// output. The action, a non-empty justification and the risks list are
// mandatory.
func parse(raw string) (parsed, error) {
	obj, err := llm.ExtractJSONObject(raw)
	if err != nil {
		return parsed{}, err
	}

	var w wireRecommendation
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return parsed{}, fmt.Errorf("decode recommendation: %w", err)
	}

	action := types.Action(strings.ToUpper(strings.TrimSpace(w.Recommendation)))
	if !action.Valid() {
		return parsed{}, fmt.Errorf("%w: %q", ErrInvalidRecommendation, w.Recommendation)
	}

	justification := strings.TrimSpace(w.Justification)
	if justification == "" {
		return parsed{}, fmt.Errorf("%w: missing justification", ErrInvalidRecommendation)
	}

	risks, ok := decodeRisks(w.Risks)
	if !ok {
		return parsed{}, fmt.Errorf("%w: risks must be a list of strings", ErrInvalidRecommendation)
	}

	p := parsed{rec: types.Recommendation{
		Symbol:        strings.TrimSpace(w.CompanySymbol),
		Action:        action,
		Justification: justification,
		Risks:         risks,
		MarketTrend:   w.MarketTrend,
		NewsSummary:   w.NewsSummary,
	}}
	p.rec.SentimentScore, p.hasScore = decodeScore(w.Score)
	return p, nil
}

func complete(p parsed, symbol string, sig types.Signals, summary string) types.Recommendation {
	out := p.rec
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	if !p.hasScore {
		out.SentimentScore = sig.SentimentScore
	}
	if strings.TrimSpace(out.MarketTrend) == "" {
		out.MarketTrend = sig.Trend
	}
	if strings.TrimSpace(out.NewsSummary) == "" {
		out.NewsSummary = summary
	}
	return out
}

func errorRecommendation(symbol string, err error, sig types.Signals, summary string) types.Recommendation {
	return types.Recommendation{
		Symbol:         symbol,
		Action:         types.ActionError,
		Justification:  fmt.Sprintf("Failed to get LLM recommendation: %v", err),
		Risks:          append([]string(nil), errorRisks...),
		SentimentScore: sig.SentimentScore,
		MarketTrend:    sig.Trend,
		NewsSummary:    summary,
	}
}

// decodeRisks accepts a list of strings or a single string. Blank entries
// are dropped.
func decodeRisks(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, r := range list {
			if r = strings.TrimSpace(r); r != "" {
				out = append(out, r)
			}
		}
		return out, true
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single == "" {
			return []string{}, true
		}
		return []string{single}, true
	}
	return nil, false
}

func decodeScore(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
