package observability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/utcban/pkg/observability"
)

func TestLintMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	m, err := observability.NewLintMetrics(reg)
	require.NoError(t, err)

	m.FileDone(observability.StatusChecked)
	m.FileDone(observability.StatusChecked)
	m.FileDone(observability.StatusFailed)
	m.Reported("UTC001")
	m.ObserveParse(0.002)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Files.WithLabelValues(observability.StatusChecked)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Files.WithLabelValues(observability.StatusFailed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Diagnostics.WithLabelValues("UTC001")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ParseDuration))
}

func TestLintMetricsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	_, err := observability.NewLintMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewLintMetrics(reg)
	require.Error(t, err)
}

func TestNilLintMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *observability.LintMetrics

	assert.NotPanics(t, func() {
		m.FileDone(observability.StatusSkipped)
		m.Reported("UTC002")
		m.ObserveParse(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	m, err := observability.NewLintMetrics(reg)
	require.NoError(t, err)

	m.Reported("UTC002")

	path := filepath.Join(t.TempDir(), "utcban.prom")
	require.NoError(t, observability.WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `utcban_diagnostics_total{code="UTC002"} 1`)
}
