package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-investment-agent/internal/metrics"
	"llm-investment-agent/internal/types"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafka(w, "investment-recommendations", nil)
	p.now = func() time.Time { return time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC) }

	rec := types.Recommendation{Symbol: "IONQ", Action: types.ActionBuy, Risks: []string{"Market volatility"}}
	require.NoError(t, p.Publish(context.Background(), "cycle-1", rec))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "IONQ", string(msg.Key))
	assert.Equal(t, "BUY", string(msg.Headers[1].Value))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "cycle-1", ev.CycleID)
	assert.Equal(t, "2024-05-08T15:00:00Z", ev.PublishedAt)
	assert.Equal(t, rec, ev.Recommendation)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_ErrorIsWrappedAndCounted(t *testing.T) {
	m := metrics.New()
	p := newKafka(&fakeWriter{err: errors.New("leader not available")}, "t", m)

	err := p.Publish(context.Background(), "c", types.Recommendation{Symbol: "IBM", Action: types.ActionHold})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish IBM to t")
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "agent_publish_total"))
}

func TestNewKafka_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafka(Config{Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = NewKafka(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)

	p, err := NewKafka(Config{Brokers: []string{"localhost:9092"}, Topic: "t"}, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNoop(t *testing.T) {
	var p Noop
	assert.NoError(t, p.Publish(context.Background(), "c", types.Recommendation{}))
	assert.NoError(t, p.Close())
}
