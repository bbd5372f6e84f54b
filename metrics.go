// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskpool

import (
	"sync/atomic"
)

// metricsState is the internal, atomically-updated metric store, allocated
// only when WithMetrics is enabled so disabled pools pay nothing on the hot
// paths beyond a nil check.
type metricsState struct {
	submitted  atomic.Uint64
	executed   atomic.Uint64
	failed     atomic.Uint64
	abandoned  atomic.Uint64
	scans      atomic.Uint64
	promotions atomic.Uint64
	maxQueued  atomic.Int64
	maxWaiting atomic.Int64
}

func (m *metricsState) observeQueued(depth int64) {
	for {
		cur := m.maxQueued.Load()
		if depth <= cur || m.maxQueued.CompareAndSwap(cur, depth) {
			return
		}
	}
}

func (m *metricsState) observeWaiting(depth int64) {
	for {
		cur := m.maxWaiting.Load()
		if depth <= cur || m.maxWaiting.CompareAndSwap(cur, depth) {
			return
		}
	}
}

// Metrics is a point-in-time snapshot of pool statistics, returned by
// [Pool.Metrics]. Counters are cumulative for the lifetime of the pool and
// survive runtime rebuilds (abort/reset).
type Metrics struct {
	// Submitted counts every accepted submission, deferred included.
	Submitted uint64
	// Executed counts tasks that ran to successful completion.
	Executed uint64
	// Failed counts tasks whose callable returned an error or panicked.
	Failed uint64
	// Abandoned counts records dropped undispatched (abort, reset, close,
	// and submissions after close).
	Abandoned uint64
	// Scans counts scanner passes over a non-empty waiting set.
	Scans uint64
	// Promotions counts records migrated waiting → ready.
	Promotions uint64
	// MaxQueued is the peak ready-queue depth observed.
	MaxQueued int64
	// MaxWaiting is the peak waiting-set depth observed.
	MaxWaiting int64
}

// Metrics returns a snapshot of the pool's statistics, or nil when metrics
// collection was not enabled via [WithMetrics].
//
// Thread Safety: safe to call concurrently; the snapshot is a copy.
func (p *Pool) Metrics() *Metrics {
	m := p.metrics
	if m == nil {
		return nil
	}
	return &Metrics{
		Submitted:  m.submitted.Load(),
		Executed:   m.executed.Load(),
		Failed:     m.failed.Load(),
		Abandoned:  m.abandoned.Load(),
		Scans:      m.scans.Load(),
		Promotions: m.promotions.Load(),
		MaxQueued:  m.maxQueued.Load(),
		MaxWaiting: m.maxWaiting.Load(),
	}
}
