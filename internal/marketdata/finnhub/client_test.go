package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second})
	c.now = func() time.Time { return time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC) }
	return c
}

func TestQuote(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "IONQ", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":8.5,"d":0.2,"dp":2.41,"h":8.6,"l":8.3,"o":8.3,"pc":8.3,"t":1700000000}`))
	})

	q, err := c.Quote(context.Background(), "IONQ")
	require.NoError(t, err)
	require.NotNil(t, q.Current)
	assert.Equal(t, 8.5, *q.Current)
	assert.Equal(t, 2.41, *q.PercentChange)
	assert.Equal(t, 8.3, *q.PrevClose)
	assert.Equal(t, int64(1700000000), q.Timestamp)
	assert.False(t, q.IsEmpty())
}

func TestQuote_UnknownSymbolIsEmpty(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	q, err := c.Quote(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.True(t, q.IsEmpty())
	assert.Nil(t, q.PercentChange)
}

func TestCompanyNews_LookbackWindowAndCleanup(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-05-08", r.URL.Query().Get("to"))
		w.Write([]byte(`[
			{"category":"company","datetime":1715000000,"headline":"IonQ &amp; AWS expand deal","id":1,"source":"Yahoo","summary":"<p>Strong growth</p>","url":"https://x/1"},
			{"category":"company","datetime":1715000100,"headline":"Second","id":2,"source":"MarketWatch","summary":"","url":"https://x/2"}
		]`))
	})

	items, err := c.CompanyNews(context.Background(), "IONQ")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "IonQ & AWS expand deal", items[0].Headline)
	assert.Equal(t, "Strong growth", items[0].Summary)
	assert.Equal(t, "Yahoo", items[0].Source)
	assert.Equal(t, int64(1715000000), items[0].Datetime)
}

func TestCompanyNews_EmptyArrayIsNotNil(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	items, err := c.CompanyNews(context.Background(), "IBM")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNewsSentiment(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news-sentiment", r.URL.Path)
		w.Write([]byte(`{"buzz":{"articlesInLastWeek":20,"buzz":1.3,"weeklyAverage":15},
			"companyNewsScore":0.6,"sectorAverageBullishPercent":0.5,"sectorAverageNewsScore":0.51,
			"sentiment":{"bearishPercent":0.3,"bullishPercent":0.7},"symbol":"IONQ"}`))
	})

	s, err := c.NewsSentiment(context.Background(), "IONQ")
	require.NoError(t, err)
	assert.Equal(t, 20.0, *s.ArticlesLastWeek())
	assert.Equal(t, 0.6, *s.NewsScore())
	assert.Equal(t, 0.7, *s.BullishPercent())
	assert.False(t, s.IsEmpty())
}

func TestErrors(t *testing.T) {
	t.Run("forbidden", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"You don't have access to this resource."}`, http.StatusForbidden)
		})
		_, err := c.NewsSentiment(context.Background(), "IONQ")
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"bad"}`))
		})
		_, err := c.CompanyNews(context.Background(), "IONQ")
		assert.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		c := New(Config{BaseURL: "http://127.0.0.1:1"})
		_, err := c.Quote(context.Background(), "IBM")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})
}
