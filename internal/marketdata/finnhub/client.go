package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"llm-investment-agent/internal/api"
	"llm-investment-agent/internal/news"
	"llm-investment-agent/internal/types"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

var ErrMissingAPIKey = errors.New("finnhub: api key not configured")

// Config configures the REST client.
type Config struct {
	APIKey            string
	BaseURL           string
	LookbackDays      int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client implements quote, company news and news sentiment lookups against
// the Finnhub REST API.
type Client struct {
	http     *api.Client
	apiKey   string
	lookback int
	now      func() time.Time
}

// New creates a Finnhub client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		http: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithRateLimiter(api.PerMinute(cfg.RequestsPerMinute)),
			api.WithHeader("Accept", "application/json"),
			api.WithLogging(true),
		),
		apiKey:   cfg.APIKey,
		lookback: cfg.LookbackDays,
		now:      time.Now,
	}
}

// newsItem is the /company-news wire format.
type newsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Quote fetches GET /quote.
func (c *Client) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	var q types.Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return types.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return q, nil
}

// CompanyNews fetches GET /company-news for the configured lookback window.
func (c *Client) CompanyNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	to := c.now()
	from := to.AddDate(0, 0, -c.lookback)

	var raw []newsItem
	params := url.Values{
		"symbol": {symbol},
		"from":   {from.Format(time.DateOnly)},
		"to":     {to.Format(time.DateOnly)},
	}
	if err := c.get(ctx, "/company-news", params, &raw); err != nil {
		return nil, fmt.Errorf("company news %s: %w", symbol, err)
	}

	items := make([]types.NewsItem, 0, len(raw))
	for _, n := range raw {
		items = append(items, types.NewsItem{
			Headline: n.Headline,
			Summary:  n.Summary,
			Datetime: n.Datetime,
			Source:   n.Source,
			URL:      n.URL,
		})
	}
	return news.Clean(items), nil
}

// NewsSentiment fetches GET /news-sentiment.
func (c *Client) NewsSentiment(ctx context.Context, symbol string) (types.ProviderSentiment, error) {
	var s types.ProviderSentiment
	if err := c.get(ctx, "/news-sentiment", url.Values{"symbol": {symbol}}, &s); err != nil {
		return types.ProviderSentiment{}, fmt.Errorf("news sentiment %s: %w", symbol, err)
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("token", c.apiKey)

	resp, err := c.http.GET(ctx, path+"?"+params.Encode())
	if err != nil {
		return err
	}
	return resp.ParseJSON(out)
}
