// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCounters(t *testing.T) {
	m := NewMetrics("test")

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
}

func TestRecordRequest(t *testing.T) {
	m := NewMetrics("test")

	m.RecordRequest("author", 200, 0.25)
	m.RecordRequest("author", 200, 0.5)
	m.RecordRequest("author", 429, 0.1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("author", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("author", "429")))

	count, err := histogramSampleCount(m.RequestDuration.WithLabelValues("author").(prometheus.Histogram))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestQuotaAndRetries(t *testing.T) {
	m := NewMetrics("test")

	m.SetQuotaRemaining(19876)
	m.RecordRetry()

	assert.Equal(t, 19876.0, testutil.ToFloat64(m.QuotaRemaining))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordRequest("search", 200, 1)
		m.RecordRetry()
		m.SetQuotaRemaining(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("scopuscite")
	m.RecordCacheHit()

	path := filepath.Join(t.TempDir(), "scopuscite.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scopuscite_cache_hits_total 1")
}

func histogramSampleCount(h prometheus.Histogram) (uint64, error) {
	var metric dto.Metric
	if err := h.Write(&metric); err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleCount(), nil
}
