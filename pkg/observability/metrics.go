package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "utcban"

	labelStatus = "status"
	labelCode   = "code"
)

// File outcome label values.
const (
	StatusChecked = "checked"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// LintMetrics holds Prometheus collectors describing a lint run.
type LintMetrics struct {
	Files         *prometheus.CounterVec
	Diagnostics   *prometheus.CounterVec
	ParseDuration prometheus.Histogram
}

// NewLintMetrics creates the lint collectors and registers them with reg.
func NewLintMetrics(reg prometheus.Registerer) (*LintMetrics, error) {
	m := &LintMetrics{
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "files_total",
			Help:      "Files processed, by outcome.",
		}, []string{labelStatus}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported, by rule code.",
		}, []string{labelCode}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing a single file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), //nolint:mnd // 0.5ms .. ~1s
		}),
	}

	for _, c := range []prometheus.Collector{m.Files, m.Diagnostics, m.ParseDuration} {
		err := reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("register lint metrics: %w", err)
		}
	}

	return m, nil
}

// FileDone records the outcome of one file.
func (m *LintMetrics) FileDone(status string) {
	if m == nil {
		return
	}

	m.Files.WithLabelValues(status).Inc()
}

// Reported records one diagnostic with the given code.
func (m *LintMetrics) Reported(code string) {
	if m == nil {
		return
	}

	m.Diagnostics.WithLabelValues(code).Inc()
}

// ObserveParse records the duration of one parse in seconds.
func (m *LintMetrics) ObserveParse(seconds float64) {
	if m == nil {
		return
	}

	m.ParseDuration.Observe(seconds)
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	err := prometheus.WriteToTextfile(path, g)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
