package types

import (
	"math"
	"time"
)

// Company is a tracked equity as configured; it is never mutated at runtime.
type Company struct {
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	Name   string `yaml:"name" json:"name" validate:"required"`
	Sector string `yaml:"sector" json:"sector"`
	Notes  string `yaml:"notes" json:"notes"`
}

// Quote mirrors the Finnhub /quote payload. Absent fields stay nil so that
// "missing" can be told apart from a genuine zero.
type Quote struct {
	Current       *float64 `json:"c,omitempty"`
	Change        *float64 `json:"d,omitempty"`
	PercentChange *float64 `json:"dp,omitempty"`
	High          *float64 `json:"h,omitempty"`
	Low           *float64 `json:"l,omitempty"`
	Open          *float64 `json:"o,omitempty"`
	PrevClose     *float64 `json:"pc,omitempty"`
	Timestamp     int64    `json:"t,omitempty"`
}

// IsEmpty reports whether the quote carries no usable price. Finnhub answers
// unknown symbols with an all-zero payload, which is treated the same way.
func (q Quote) IsEmpty() bool {
	return q.Current == nil || (*q.Current == 0 && q.Timestamp == 0)
}

type NewsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
}

type Buzz struct {
	ArticlesInLastWeek *float64 `json:"articlesInLastWeek,omitempty"`
	WeeklyAverage      *float64 `json:"weeklyAverage,omitempty"`
	Buzz               *float64 `json:"buzz,omitempty"`
}

type SentimentBreakdown struct {
	BullishPercent *float64 `json:"bullishPercent,omitempty"`
	BearishPercent *float64 `json:"bearishPercent,omitempty"`
}

// ProviderSentiment is the data source's own aggregated news sentiment. It is
// passed through to the prompt untouched.
type ProviderSentiment struct {
	Buzz                        *Buzz               `json:"buzz,omitempty"`
	Sentiment                   *SentimentBreakdown `json:"sentiment,omitempty"`
	CompanyNewsScore            *float64            `json:"companyNewsScore,omitempty"`
	SectorAverageBullishPercent *float64            `json:"sectorAverageBullishPercent,omitempty"`
	SectorAverageNewsScore      *float64            `json:"sectorAverageNewsScore,omitempty"`
	Symbol                      string              `json:"symbol,omitempty"`
}

func (s ProviderSentiment) IsEmpty() bool {
	return s.Buzz == nil && s.Sentiment == nil && s.CompanyNewsScore == nil &&
		s.SectorAverageBullishPercent == nil && s.SectorAverageNewsScore == nil
}

// ArticlesLastWeek, WeeklyAverage, BullishPercent and NewsScore extract the
// prompt fields.
func (s ProviderSentiment) ArticlesLastWeek() *float64 {
	if s.Buzz == nil {
		return nil
	}
	return s.Buzz.ArticlesInLastWeek
}

func (s ProviderSentiment) WeeklyAverage() *float64 {
	if s.Buzz == nil {
		return nil
	}
	return s.Buzz.WeeklyAverage
}

func (s ProviderSentiment) BullishPercent() *float64 {
	if s.Sentiment == nil {
		return nil
	}
	return s.Sentiment.BullishPercent
}

func (s ProviderSentiment) NewsScore() *float64 {
	return s.CompanyNewsScore
}

// Record is everything gathered for one symbol during one cycle.
type Record struct {
	Company   Company           `json:"company"`
	Quote     Quote             `json:"stock_quote"`
	News      []NewsItem        `json:"news"`
	Sentiment ProviderSentiment `json:"finnhub_sentiment"`
}

// HasQuote reports whether the record can proceed to analysis.
func (r Record) HasQuote() bool {
	return !r.Quote.IsEmpty()
}

const (
	TrendPositive = "positive"
	TrendNegative = "negative"
	TrendNeutral  = "neutral"
	TrendUnknown  = "unknown"
)

// Signals are derived locally from a Record each cycle.
type Signals struct {
	SentimentScore float64 `json:"sentiment_score"`
	Trend          string  `json:"trend"`
}

type Action string

const (
	ActionBuy   Action = "BUY"
	ActionHold  Action = "HOLD"
	ActionSell  Action = "SELL"
	ActionError Action = "ERROR"
)

// Valid reports whether the action is one the model may legitimately return.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionHold || a == ActionSell
}

// Recommendation is the terminal output of one symbol's pipeline run.
type Recommendation struct {
	Symbol         string   `json:"company_symbol"`
	Action         Action   `json:"recommendation"`
	Justification  string   `json:"justification"`
	Risks          []string `json:"risks"`
	SentimentScore float64  `json:"current_sentiment_score"`
	MarketTrend    string   `json:"market_trend"`
	NewsSummary    string   `json:"news_summary"`
}

// MemoryRecord is the persisted value per symbol.
type MemoryRecord struct {
	LatestRecommendation Recommendation `json:"latest_recommendation"`
	LastUpdated          string         `json:"last_updated"`
}

// UpdatedAt parses LastUpdated; the zero time is returned when unparsable.
func (m MemoryRecord) UpdatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.LastUpdated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}

// Finite reports whether p holds a usable number.
func Finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}
