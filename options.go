// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskpool

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// poolOptions holds configuration options for Pool creation.
type poolOptions struct {
	logger         *logiface.Logger[logiface.Event]
	threadCount    int
	scanLatency    time.Duration
	metricsEnabled bool
	recordPooling  bool
}

// Option configures a Pool instance.
type Option interface {
	applyOption(*poolOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*poolOptions) error
}

func (o *optionImpl) applyOption(opts *poolOptions) error {
	return o.applyFunc(opts)
}

// WithThreadCount sets the number of worker goroutines. Zero (the default)
// selects the detected hardware parallelism (runtime.GOMAXPROCS(0)), falling
// back to 1. Negative values are rejected by [New].
func WithThreadCount(n int) Option {
	return &optionImpl{func(opts *poolOptions) error {
		if n < 0 {
			return fmt.Errorf("taskpool: invalid thread count %d", n)
		}
		opts.threadCount = n
		return nil
	}}
}

// WithScanLatency sets the maximum time a worker sleeps between two
// opportunities to play the scanner role while tasks sit in the waiting
// set. Non-positive values select [DefaultScanLatency].
func WithScanLatency(d time.Duration) Option {
	return &optionImpl{func(opts *poolOptions) error {
		opts.scanLatency = d
		return nil
	}}
}

// WithLogger sets a structured logger for pool diagnostics (task panics,
// abort/reset lifecycle, scanner promotions at debug level). A nil logger
// (the default) falls back to log.Printf for task panics only.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *poolOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables runtime metrics collection. When enabled, a snapshot
// can be read via [Pool.Metrics], and a [Collector] can bridge the pool into
// a prometheus registry. Disabled by default; the hot paths then skip all
// metric accounting.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *poolOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithRecordPooling recycles internal task-record allocations through a
// sync.Pool, reducing allocator pressure under high submission rates.
// Futures are never recycled.
func WithRecordPooling(enabled bool) Option {
	return &optionImpl{func(opts *poolOptions) error {
		opts.recordPooling = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to poolOptions.
func resolveOptions(opts []Option) (*poolOptions, error) {
	cfg := &poolOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
