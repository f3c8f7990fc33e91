package analyzer

import (
	"math"
	"strings"
	"unicode"

	"llm-investment-agent/internal/interfaces"
	"llm-investment-agent/internal/types"
)

const (
	LabelBullish = "bullish"
	LabelBearish = "bearish"
	LabelNeutral = "neutral"
)

// Config holds the thresholds used for labelling.
type Config struct {
	PositiveThreshold float64
	NegativeThreshold float64
	// FlatBandPct is the absolute percent change treated as flat.
	FlatBandPct float64
}

func DefaultConfig() Config {
	return Config{PositiveThreshold: 0.1, NegativeThreshold: -0.05}
}

// Analyzer derives local signals from collected data. All methods are pure.
type Analyzer struct {
	cfg              Config
	positiveWords    map[string]bool
	negativeWords    map[string]bool
	uncertaintyWords map[string]bool
}

var _ interfaces.SignalAnalyzer = (*Analyzer)(nil)

func New(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:              cfg,
		positiveWords:    toSet(positiveWords),
		negativeWords:    toSet(negativeWords),
		uncertaintyWords: toSet(uncertaintyWords),
	}
}

// Analyze computes both signals for a record.
func (a *Analyzer) Analyze(rec types.Record) types.Signals {
	return types.Signals{
		SentimentScore: a.Sentiment(rec.News),
		Trend:          a.Trend(rec.Quote),
	}
}

// Sentiment scores headlines and summaries with a financial word lexicon.
// The result is in [-1, 1]; empty input yields 0.
func (a *Analyzer) Sentiment(news []types.NewsItem) float64 {
	var total, positive, negative, uncertain int
	for _, n := range news {
		for _, w := range tokenize(n.Headline + " " + n.Summary) {
			total++
			if a.positiveWords[w] {
				positive++
			}
			if a.negativeWords[w] {
				negative++
			}
			if a.uncertaintyWords[w] {
				uncertain++
			}
		}
	}
	if total == 0 {
		return 0
	}

	net := float64(positive-negative) / float64(total)
	// Headlines are short, so the raw ratio is amplified before clamping
	score := net * 10

	// Hedged language lowers confidence in either direction
	uncertainty := math.Min(float64(uncertain)/float64(total)*20, 1)
	score *= 1 - uncertainty*0.5

	return clamp(score, -1, 1)
}

// Trend labels the day's move. Percent change is preferred; current versus
// previous close is the fallback. Missing data gives "unknown".
func (a *Analyzer) Trend(q types.Quote) string {
	var pct float64
	switch {
	case types.Finite(q.PercentChange):
		pct = *q.PercentChange
	case types.Finite(q.Current) && types.Finite(q.PrevClose) && *q.PrevClose != 0:
		pct = (*q.Current - *q.PrevClose) / *q.PrevClose * 100
	default:
		return types.TrendUnknown
	}

	band := math.Abs(a.cfg.FlatBandPct)
	switch {
	case pct > band:
		return types.TrendPositive
	case pct < -band:
		return types.TrendNegative
	default:
		return types.TrendNeutral
	}
}

// SentimentLabel buckets a score using the configured thresholds.
func (a *Analyzer) SentimentLabel(score float64) string {
	switch {
	case score >= a.cfg.PositiveThreshold:
		return LabelBullish
	case score <= a.cfg.NegativeThreshold:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, lo), hi)
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
