package nnsearch

import (
	"sync/atomic"
	"time"
)

// QueryKind names the shape of a query for logs and metrics.
type QueryKind string

// Query kinds.
const (
	QueryNearest QueryKind = "nearest"
	QueryKNN     QueryKind = "knn"
	QueryRadius  QueryKind = "radius"
	QueryList    QueryKind = "list"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each Add or AddAll with the number of
	// elements inserted.
	RecordInsert(count int, duration time.Duration, err error)

	// RecordSearch is called after each query. k is the requested neighbor
	// count (zero for radius queries), found the number of results.
	RecordSearch(kind QueryKind, k, found int, duration time.Duration, err error)

	// RecordRemove is called after each Remove.
	RecordRemove(removed bool, duration time.Duration, err error)

	// RecordRebuild is called after each full rebuild of the index.
	RecordRebuild(reason RebuildReason, size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error)                 {}
func (NoopMetricsCollector) RecordSearch(QueryKind, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRemove(bool, time.Duration, error)                {}
func (NoopMetricsCollector) RecordRebuild(RebuildReason, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertElements   atomic.Int64
	InsertErrors     atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	RemoveCount      atomic.Int64
	RemoveHits       atomic.Int64
	RemoveErrors     atomic.Int64
	RebuildCount     atomic.Int64
	RebuildErrors    atomic.Int64
	RebuildGrowth    atomic.Int64
	RebuildNanos     atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(count int, _ time.Duration, err error) {
	b.InsertCount.Add(1)
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertElements.Add(int64(count))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ QueryKind, _, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed bool, _ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if removed {
		b.RemoveHits.Add(1)
	}
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(reason RebuildReason, _ int, duration time.Duration, err error) {
	b.RebuildCount.Add(1)
	b.RebuildNanos.Add(duration.Nanoseconds())
	if reason == ReasonGrowth {
		b.RebuildGrowth.Add(1)
	}
	if err != nil {
		b.RebuildErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertElements: b.InsertElements.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveHits:     b.RemoveHits.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
		RebuildCount:   b.RebuildCount.Load(),
		RebuildErrors:  b.RebuildErrors.Load(),
		RebuildGrowth:  b.RebuildGrowth.Load(),
		RebuildNanos:   b.RebuildNanos.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertElements int64
	InsertErrors   int64
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	RemoveCount    int64
	RemoveHits     int64
	RemoveErrors   int64
	RebuildCount   int64
	RebuildErrors  int64
	RebuildGrowth  int64
	RebuildNanos   int64
}
