package advisor

import (
	"math"
	"strconv"
	"strings"
	"text/template"

	"llm-investment-agent/internal/types"
)

const notAvailable = "N/A"

const summaryPrompt = `Summarize the following recent news headlines about {{.Name}} ({{.Symbol}}) and extract key positive or negative themes:

{{range $i, $h := .Headlines}}{{if $i}}
{{end}}{{$h}}{{end}}`

const recommendationPrompt = `You are an expert financial analyst specializing in {{.Focus}}.
Your task is to provide an investment recommendation (Buy/Hold/Sell) for {{.Name}} ({{.Symbol}}), considering the following data:

Company Overview: {{.Notes}}

Current Market Data:
- Current Price: ${{.Price}}
- Daily Price Change (%): {{.PercentChange}}%
- Recent Stock Trend (Today): {{.Trend}}

News and Sentiment:
- Recent News Summary: {{.NewsSummary}}
- Calculated News Sentiment (from our analysis): {{.Score}} (Range -1.0 to 1.0)
- Finnhub Aggregated News Articles (Last Week): {{.ArticlesLastWeek}}
- Finnhub Weekly Average News Articles: {{.WeeklyAverage}}
- Finnhub Aggregated Company News Score: {{.NewsScore}} (Higher is more positive)
- Finnhub Aggregated Bullish Percent: {{.BullishPercent}}%

Based on this information, provide a clear investment recommendation (BUY, HOLD, or SELL), a brief justification, and list potential risks.

Respond in JSON format with the following structure:
{
    "company_symbol": "{{.Symbol}}",
    "recommendation": "BUY" | "HOLD" | "SELL",
    "justification": "...",
    "risks": ["...", "..."],
    "current_sentiment_score": ...,
    "market_trend": "...",
    "news_summary": "..."
}
`

var (
	summaryTmpl        = template.Must(template.New("summary").Parse(summaryPrompt))
	recommendationTmpl = template.Must(template.New("recommendation").Parse(recommendationPrompt))
)

type summaryData struct {
	Name      string
	Symbol    string
	Headlines []string
}

// promptData holds every prompt value already rendered as text, so that the
// template never sees a missing field.
type promptData struct {
	Focus            string
	Name             string
	Symbol           string
	Notes            string
	Price            string
	PercentChange    string
	Trend            string
	NewsSummary      string
	Score            string
	ArticlesLastWeek string
	WeeklyAverage    string
	NewsScore        string
	BullishPercent   string
}

func newPromptData(focus string, rec types.Record, sig types.Signals, summary string) promptData {
	return promptData{
		Focus:            orNA(focus),
		Name:             orNA(rec.Company.Name),
		Symbol:           orNA(rec.Company.Symbol),
		Notes:            orNA(rec.Company.Notes),
		Price:            formatNumber(rec.Quote.Current),
		PercentChange:    formatNumber(rec.Quote.PercentChange),
		Trend:            orNA(sig.Trend),
		NewsSummary:      orNA(summary),
		Score:            formatScore(sig.SentimentScore),
		ArticlesLastWeek: formatNumber(rec.Sentiment.ArticlesLastWeek()),
		WeeklyAverage:    formatNumber(rec.Sentiment.WeeklyAverage()),
		NewsScore:        formatNumber(rec.Sentiment.NewsScore()),
		BullishPercent:   formatNumber(rec.Sentiment.BullishPercent()),
	}
}

func formatNumber(p *float64) string {
	if !types.Finite(p) {
		return notAvailable
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// headlines returns up to n non-empty headlines in source order.
func headlines(news []types.NewsItem, n int) []string {
	out := make([]string, 0, n)
	for _, item := range news {
		if len(out) == n {
			break
		}
		if h := strings.TrimSpace(item.Headline); h != "" {
			out = append(out, h)
		}
	}
	return out
}
