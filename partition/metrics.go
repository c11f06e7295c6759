package partition

import "sync/atomic"

// MetricsCollector observes store I/O. Implement it to export page-swap and
// flush activity to a monitoring system.
type MetricsCollector interface {
	// RecordFlush is called after a partition file and the index were written.
	RecordFlush(partition string, entries int, bytes int, err error)

	// RecordLoad is called after a partition file was read (or found missing).
	RecordLoad(partition string, entries int, err error)

	// RecordPageSwap is called when a point lookup misses the resident
	// partition and another partition must be paged in.
	RecordPageSwap(from, to string)

	// RecordRollover is called when AddData closes a full partition.
	RecordRollover(full string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFlush(string, int, int, error) {}
func (NoopMetricsCollector) RecordLoad(string, int, error)       {}
func (NoopMetricsCollector) RecordPageSwap(string, string)       {}
func (NoopMetricsCollector) RecordRollover(string)               {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	Flushes      atomic.Int64
	FlushErrors  atomic.Int64
	BytesWritten atomic.Int64
	Loads        atomic.Int64
	LoadErrors   atomic.Int64
	PageSwaps    atomic.Int64
	Rollovers    atomic.Int64
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(_ string, _ int, bytes int, err error) {
	b.Flushes.Add(1)
	b.BytesWritten.Add(int64(bytes))
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ string, _ int, err error) {
	b.Loads.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordPageSwap implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPageSwap(string, string) { b.PageSwaps.Add(1) }

// RecordRollover implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRollover(string) { b.Rollovers.Add(1) }

// Snapshot is a point-in-time copy of BasicMetricsCollector counters.
type Snapshot struct {
	Flushes      int64
	FlushErrors  int64
	BytesWritten int64
	Loads        int64
	LoadErrors   int64
	PageSwaps    int64
	Rollovers    int64
}

// Snapshot returns the current counter values.
func (b *BasicMetricsCollector) Snapshot() Snapshot {
	return Snapshot{
		Flushes:      b.Flushes.Load(),
		FlushErrors:  b.FlushErrors.Load(),
		BytesWritten: b.BytesWritten.Load(),
		Loads:        b.Loads.Load(),
		LoadErrors:   b.LoadErrors.Load(),
		PageSwaps:    b.PageSwaps.Load(),
		Rollovers:    b.Rollovers.Load(),
	}
}
