package geocell

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordCovering is called after each region covering computed during
	// Build or Query. cells is the covering size, candidates the number of
	// search candidates created.
	RecordCovering(cells, candidates int, duration time.Duration)

	// RecordBuild is called after each Build. pairs is the number of
	// (cell, label) pairs indexed and ranges the number of leaf ranges.
	RecordBuild(pairs, ranges int, duration time.Duration, err error)

	// RecordQuery is called after each query with the number of labels
	// found.
	RecordQuery(labels int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCovering(int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CoveringCount      atomic.Int64
	CoveringCells      atomic.Int64
	CoveringCandidates atomic.Int64
	CoveringTotalNanos atomic.Int64
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildPairs         atomic.Int64
	QueryCount         atomic.Int64
	QueryErrors        atomic.Int64
	QueryLabels        atomic.Int64
	QueryTotalNanos    atomic.Int64
}

// RecordCovering implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCovering(cells, candidates int, duration time.Duration) {
	b.CoveringCount.Add(1)
	b.CoveringCells.Add(int64(cells))
	b.CoveringCandidates.Add(int64(candidates))
	b.CoveringTotalNanos.Add(duration.Nanoseconds())
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(pairs, _ int, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildPairs.Add(int64(pairs))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(labels int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryLabels.Add(int64(labels))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CoveringCount:      b.CoveringCount.Load(),
		CoveringAvgCells:   avg(b.CoveringCells.Load(), b.CoveringCount.Load()),
		CoveringCandidates: b.CoveringCandidates.Load(),
		CoveringAvgNanos:   avg(b.CoveringTotalNanos.Load(), b.CoveringCount.Load()),
		BuildCount:         b.BuildCount.Load(),
		BuildErrors:        b.BuildErrors.Load(),
		BuildPairs:         b.BuildPairs.Load(),
		QueryCount:         b.QueryCount.Load(),
		QueryErrors:        b.QueryErrors.Load(),
		QueryLabels:        b.QueryLabels.Load(),
		QueryAvgNanos:      avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CoveringCount      int64
	CoveringAvgCells   int64
	CoveringCandidates int64
	CoveringAvgNanos   int64
	BuildCount         int64
	BuildErrors        int64
	BuildPairs         int64
	QueryCount         int64
	QueryErrors        int64
	QueryLabels        int64
	QueryAvgNanos      int64
}
