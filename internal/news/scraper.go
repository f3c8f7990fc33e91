package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"llm-investment-agent/internal/api"
	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/types"
)

// ScraperConfig configures the Google News scraper
type ScraperConfig struct {
	BaseURL   string
	MaxItems  int
	Timeout   time.Duration
	UserAgent string
}

// Scraper fetches company headlines from a Google News search page. It is
// the news source used when no API provider is configured for news.
type Scraper struct {
	cfg   ScraperConfig
	names map[string]string
}

// NewScraper creates a scraper. names maps symbols to company names, which
// give far better search results than tickers.
func NewScraper(cfg ScraperConfig, names map[string]string) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://news.google.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = api.BrowserHeaders()["User-Agent"]
	}
	return &Scraper{cfg: cfg, names: names}
}

// CompanyNews scrapes the search results page for symbol
func (s *Scraper) CompanyNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	items := []types.NewsItem{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(s.cfg.BaseURL)),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.cfg.Timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.cfg.UserAgent)
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(items) >= s.cfg.MaxItems {
			return
		}

		title := firstNonEmpty(e.ChildText("h3"), e.ChildText("h4"), e.ChildText("a.JtKRv"))
		if title == "" {
			return
		}

		link := e.ChildAttr("a", "href")
		if strings.HasPrefix(link, "./") {
			link = s.cfg.BaseURL + link[1:]
		}

		var published int64
		if dt := e.ChildAttr("time", "datetime"); dt != "" {
			if ts, err := time.Parse(time.RFC3339, dt); err == nil {
				published = ts.Unix()
			}
		}

		items = append(items, types.NewsItem{
			Headline: title,
			Source:   firstNonEmpty(e.ChildText("div.vr1PYe"), e.ChildText(".source"), "GoogleNews"),
			Datetime: published,
			URL:      link,
		})
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Scraping error", err, "symbol", symbol, "status", r.StatusCode)
	})

	searchURL := fmt.Sprintf("%s/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		s.cfg.BaseURL, url.QueryEscape(s.query(symbol)))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape news for %s: %w", symbol, err)
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, fmt.Errorf("failed to scrape news for %s: %w", symbol, scrapeErr)
	}

	logger.Debug(ctx, "News scraping completed", "symbol", symbol, "articles", len(items))
	return Clean(items), nil
}

func (s *Scraper) query(symbol string) string {
	if name, ok := s.names[symbol]; ok && name != "" {
		return name + " stock"
	}
	return symbol + " stock"
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
