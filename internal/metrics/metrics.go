package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects per-cycle metrics on a private registry. The agent is a
// run-once process, so the registry is exported to a node_exporter textfile
// at exit instead of being scraped. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	reg *prometheus.Registry

	fetchFailures   *prometheus.CounterVec
	fetchLatency    *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	skipped         prometheus.Counter
	llmLatency      *prometheus.HistogramVec
	published       *prometheus.CounterVec
	cycleDuration   prometheus.Gauge
	lastCycle       *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		fetchFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent",
				Name:      "fetch_failures_total",
				Help:      "Market data fetches that failed and were replaced by an empty value",
			},
			[]string{"kind"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of individual market data fetches",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent",
				Name:      "recommendations_total",
				Help:      "Recommendations produced, by action",
			},
			[]string{"action"},
		),
		skipped: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "agent",
				Name:      "symbols_skipped_total",
				Help:      "Symbols skipped because no quote was available",
			},
		),
		llmLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent",
				Name:      "llm_request_duration_seconds",
				Help:      "Duration of language model calls",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"mode", "status"},
		),
		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent",
				Name:      "publish_total",
				Help:      "Recommendation events published, by status",
			},
			[]string{"status"},
		),
		cycleDuration: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "agent",
				Name:      "cycle_duration_seconds",
				Help:      "Wall time of the last cycle",
			},
		),
		lastCycle: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "agent",
				Name:      "last_cycle_timestamp_seconds",
				Help:      "Unix time the last cycle finished, by status",
			},
			[]string{"status"},
		),
	}
}

// RecordFetch records one collector fetch.
func (r *Recorder) RecordFetch(kind string, ok bool, seconds float64) {
	if r == nil {
		return
	}
	r.fetchLatency.WithLabelValues(kind).Observe(seconds)
	if !ok {
		r.fetchFailures.WithLabelValues(kind).Inc()
	}
}

func (r *Recorder) RecordRecommendation(action string) {
	if r == nil {
		return
	}
	r.recommendations.WithLabelValues(action).Inc()
}

func (r *Recorder) RecordSkipped() {
	if r == nil {
		return
	}
	r.skipped.Inc()
}

// RecordLLMCall records latency of a generator call. mode is "text" for
// free-text completions and "json" for structured ones.
func (r *Recorder) RecordLLMCall(mode string, ok bool, seconds float64) {
	if r == nil {
		return
	}
	r.llmLatency.WithLabelValues(mode, statusLabel(ok)).Observe(seconds)
}

func (r *Recorder) RecordPublish(ok bool) {
	if r == nil {
		return
	}
	r.published.WithLabelValues(statusLabel(ok)).Inc()
}

func (r *Recorder) RecordCycle(status string, seconds float64, finishedUnix int64) {
	if r == nil {
		return
	}
	r.cycleDuration.Set(seconds)
	r.lastCycle.WithLabelValues(status).Set(float64(finishedUnix))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes all metrics in the text exposition format. The file
// is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func statusLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
