package out

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
)

// TextfileMetrics counts batch activity and writes it in the Prometheus text
// format for a node exporter textfile collector.
type TextfileMetrics struct {
	registry *prometheus.Registry
	path     string

	sessionsTotal   *prometheus.CounterVec
	failuresTotal   prometheus.Counter
	recordsTotal    prometheus.Counter
	issuesTotal     *prometheus.CounterVec
	playsTotal      prometheus.Counter
	mismatchesTotal *prometheus.CounterVec
	messagesPerRun  prometheus.Histogram
}

// NewTextfileMetrics registers the batch metrics on registry. An empty path
// keeps the metrics in memory only.
func NewTextfileMetrics(registry *prometheus.Registry, path string) (*TextfileMetrics, error) {
	m := &TextfileMetrics{registry: registry, path: path}
	m.sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbstats_sessions_total",
			Help: "Collection bundles processed, by which rows were produced",
		},
		[]string{"rows"}, // rows: both, collected, deployed, none
	)
	m.failuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tbstats_session_failures_total",
		Help: "Collection bundles that could not be processed",
	})
	m.recordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tbstats_log_records_total",
		Help: "Log records reconstructed across all bundles",
	})
	m.issuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbstats_log_issues_total",
			Help: "State machine issues across all bundles",
		},
		[]string{"severity"},
	)
	m.playsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tbstats_plays_total",
		Help: "Completed message plays recorded",
	})
	m.mismatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbstats_row_mismatches_total",
			Help: "Columns where a supplied row disagreed with the recomputed row",
		},
		[]string{"table"},
	)
	m.messagesPerRun = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tbstats_messages_per_session",
		Help:    "Distinct messages with statistics per bundle",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	for _, c := range []prometheus.Collector{
		m.sessionsTotal, m.failuresTotal, m.recordsTotal, m.issuesTotal,
		m.playsTotal, m.mismatchesTotal, m.messagesPerRun,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

var _ collectedout.Metrics = (*TextfileMetrics)(nil)

func (m *TextfileMetrics) ObserveSession(result domain.SessionResult) {
	m.sessionsTotal.WithLabelValues(rowsLabel(result)).Inc()
	m.recordsTotal.Add(float64(result.Records))
	m.issuesTotal.WithLabelValues("error").Add(float64(result.Errors))
	m.issuesTotal.WithLabelValues("warning").Add(float64(result.Warnings))
	plays := 0
	for _, s := range result.Statistics {
		plays += s.Plays
	}
	m.playsTotal.Add(float64(plays))
	for _, mm := range result.Mismatches {
		m.mismatchesTotal.WithLabelValues(mm.Table).Inc()
	}
	m.messagesPerRun.Observe(float64(len(result.Statistics)))
}

func (m *TextfileMetrics) ObserveFailure() {
	m.failuresTotal.Inc()
}

func (m *TextfileMetrics) Flush() error {
	if m.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func rowsLabel(result domain.SessionResult) string {
	switch {
	case result.Collected != nil && result.Deployed != nil:
		return "both"
	case result.Collected != nil:
		return "collected"
	case result.Deployed != nil:
		return "deployed"
	default:
		return "none"
	}
}
