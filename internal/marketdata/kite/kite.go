package kite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"llm-investment-agent/internal/types"
)

var ErrNotAuthenticated = errors.New("kite: api key and access token are required")

type Config struct {
	APIKey      string
	AccessToken string
	Exchange    string
	BaseURL     string
	Timeout     time.Duration
}

// QuoteSource reads quotes through Kite Connect. It is read-only: no order
// APIs are touched.
type QuoteSource struct {
	kc       *kiteconnect.Client
	exchange string
	ready    bool
}

func New(cfg Config) *QuoteSource {
	kc := kiteconnect.New(cfg.APIKey)
	kc.SetAccessToken(cfg.AccessToken)
	if cfg.BaseURL != "" {
		kc.SetBaseURI(cfg.BaseURL)
	}
	if cfg.Timeout > 0 {
		kc.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = "NSE"
	}
	return &QuoteSource{
		kc:       kc,
		exchange: exchange,
		ready:    cfg.APIKey != "" && cfg.AccessToken != "",
	}
}

// Quote maps a Kite full quote onto the Finnhub-shaped snapshot. Kite's
// ohlc.close is the previous session close.
func (s *QuoteSource) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	if !s.ready {
		return types.Quote{}, ErrNotAuthenticated
	}
	if err := ctx.Err(); err != nil {
		return types.Quote{}, err
	}

	instrument := s.exchange + ":" + symbol
	quotes, err := s.kc.GetQuote(instrument)
	if err != nil {
		return types.Quote{}, fmt.Errorf("kite quote %s: %w", instrument, err)
	}
	kq, ok := quotes[instrument]
	if !ok {
		return types.Quote{}, nil
	}

	q := types.Quote{
		Current: types.Float(kq.LastPrice),
		Open:    types.Float(kq.OHLC.Open),
		High:    types.Float(kq.OHLC.High),
		Low:     types.Float(kq.OHLC.Low),
	}
	if !kq.Timestamp.IsZero() {
		q.Timestamp = kq.Timestamp.Unix()
	}
	if prev := kq.OHLC.Close; prev != 0 {
		change := kq.LastPrice - prev
		q.PrevClose = types.Float(prev)
		q.Change = types.Float(change)
		q.PercentChange = types.Float(change / prev * 100)
	}
	return q, nil
}
