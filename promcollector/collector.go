// Package promcollector exports RegionIndex metrics to Prometheus.
//
//	c := promcollector.New("geocell")
//	prometheus.MustRegister(c)
//	idx, _ := geocell.New(geocell.WithMetricsCollector(c))
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Collector implements geocell.MetricsCollector and prometheus.Collector.
type Collector struct {
	coveringCells      prometheus.Histogram
	coveringCandidates prometheus.Histogram
	coveringLatency    prometheus.Histogram
	builds             *prometheus.CounterVec
	buildLatency       prometheus.Histogram
	indexedPairs       prometheus.Gauge
	indexedRanges      prometheus.Gauge
	queries            *prometheus.CounterVec
	queryLabels        prometheus.Histogram
	queryLatency       prometheus.Histogram
}

// New creates a collector whose metric names start with namespace.
func New(namespace string) *Collector {
	return &Collector{
		coveringCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "covering_cells",
			Help:      "Number of cells per computed covering.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		coveringCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "covering_candidates",
			Help:      "Search candidates created per covering.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		coveringLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "covering_duration_seconds",
			Help:      "Time spent computing one covering.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Index builds by status.",
		}, []string{"status"}),
		buildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building the index.",
			Buckets:   prometheus.DefBuckets,
		}),
		indexedPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_cells",
			Help:      "(cell, label) pairs in the most recently built index.",
		}),
		indexedRanges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_ranges",
			Help:      "Leaf ranges in the most recently built index.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries by status.",
		}, []string{"status"}),
		queryLabels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_labels",
			Help:      "Labels returned per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
		}),
		queryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query latency.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.coveringCells, c.coveringCandidates, c.coveringLatency,
		c.builds, c.buildLatency, c.indexedPairs, c.indexedRanges,
		c.queries, c.queryLabels, c.queryLatency,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

// RecordCovering implements geocell.MetricsCollector.
func (c *Collector) RecordCovering(cells, candidates int, d time.Duration) {
	c.coveringCells.Observe(float64(cells))
	c.coveringCandidates.Observe(float64(candidates))
	c.coveringLatency.Observe(d.Seconds())
}

// RecordBuild implements geocell.MetricsCollector.
func (c *Collector) RecordBuild(pairs, ranges int, d time.Duration, err error) {
	if err != nil {
		c.builds.WithLabelValues(statusError).Inc()
		return
	}
	c.builds.WithLabelValues(statusOK).Inc()
	c.buildLatency.Observe(d.Seconds())
	c.indexedPairs.Set(float64(pairs))
	c.indexedRanges.Set(float64(ranges))
}

// RecordQuery implements geocell.MetricsCollector.
func (c *Collector) RecordQuery(labels int, d time.Duration, err error) {
	c.queryLatency.Observe(d.Seconds())
	if err != nil {
		c.queries.WithLabelValues(statusError).Inc()
		return
	}
	c.queries.WithLabelValues(statusOK).Inc()
	c.queryLabels.Observe(float64(labels))
}
