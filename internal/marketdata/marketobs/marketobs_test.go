package marketobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/types"
)

type stubSource struct {
	quote types.Quote
	news  []types.NewsItem
	err   error
}

func (s stubSource) Quote(context.Context, string) (types.Quote, error) { return s.quote, s.err }
func (s stubSource) CompanyNews(context.Context, string) ([]types.NewsItem, error) {
	return s.news, s.err
}
func (s stubSource) NewsSentiment(context.Context, string) (types.ProviderSentiment, error) {
	return types.ProviderSentiment{}, s.err
}

func TestWrap_PassesThrough(t *testing.T) {
	price := 8.5
	src := Wrap(stubSource{
		quote: types.Quote{Current: &price, Timestamp: 1700000000},
		news:  []types.NewsItem{{Headline: "IonQ expands"}},
	})

	q, err := src.Quote(context.Background(), "IONQ")
	require.NoError(t, err)
	assert.Equal(t, 8.5, *q.Current)

	items, err := src.CompanyNews(context.Background(), "IONQ")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	s, err := src.NewsSentiment(context.Background(), "IONQ")
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
}

func TestWrap_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	src := Wrap(stubSource{err: boom})

	_, err := src.Quote(context.Background(), "IONQ")
	assert.ErrorIs(t, err, boom)
	_, err = src.CompanyNews(context.Background(), "IONQ")
	assert.ErrorIs(t, err, boom)
	_, err = src.NewsSentiment(context.Background(), "IONQ")
	assert.ErrorIs(t, err, boom)
}
