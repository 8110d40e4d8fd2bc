// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters scopuscite records while it runs. They are
// registered on a private registry so a batch run can dump them with
// WriteTextfile and tests can create as many instances as they need.
type Metrics struct {
	Registry *prometheus.Registry

	// CacheHits and CacheMisses count GetOrFetch lookups.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Requests counts Scopus API requests by endpoint and HTTP status.
	Requests *prometheus.CounterVec

	// RequestDuration observes request latency in seconds, by endpoint.
	RequestDuration *prometheus.HistogramVec

	// Retries counts 503/504 responses that were retried.
	Retries prometheus.Counter

	// QuotaRemaining mirrors the last X-RateLimit-Remaining header.
	QuotaRemaining prometheus.Gauge
}

// NewMetrics creates and registers all metrics under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups answered from the local cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that required a fetch.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Scopus API requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Scopus API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Gateway failures (503/504) that were retried.",
		}),
		QuotaRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "quota_remaining",
			Help:      "Last reported X-RateLimit-Remaining value.",
		}),
	}
	reg.MustRegister(m.CacheHits, m.CacheMisses, m.Requests, m.RequestDuration, m.Retries, m.QuotaRemaining)
	return m
}

// RecordCacheHit increments the hit counter. Safe on a nil receiver.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// RecordCacheMiss increments the miss counter. Safe on a nil receiver.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// RecordRequest counts one completed request.
func (m *Metrics) RecordRequest(endpoint string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, fmt.Sprintf("%d", status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordRetry counts one retried gateway failure.
func (m *Metrics) RecordRetry() {
	if m != nil {
		m.Retries.Inc()
	}
}

// SetQuotaRemaining records the remaining API quota.
func (m *Metrics) SetQuotaRemaining(n int) {
	if m != nil {
		m.QuotaRemaining.Set(float64(n))
	}
}

// WriteTextfile writes every metric in the Prometheus text format to path,
// suitable for a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
