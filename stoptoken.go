// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskpool

import (
	"sync"
	"sync/atomic"
)

// stopState is the pool-wide cancellation flag. It is write-once per runtime
// instance; abort/reset rebuild the runtime with a fresh flag rather than
// ever returning an existing flag to the running state.
type stopState struct {
	done chan struct{}
	once sync.Once
	flag atomic.Bool
}

func newStopState() *stopState {
	return &stopState{done: make(chan struct{})}
}

// stop fires the flag. Safe to call multiple times and from any goroutine.
func (s *stopState) stop() {
	s.once.Do(func() {
		s.flag.Store(true)
		close(s.done)
	})
}

func (s *stopState) stopped() bool {
	return s.flag.Load()
}

// neverDone is returned by the zero StopToken's Done; it never closes.
var neverDone = make(chan struct{})

// StopToken is a value-semantics, read-only view of a pool's cancellation
// flag, issued by [Pool.StopToken] and supplied to token-aware callables at
// call time (see [SubmitToken]).
//
// The zero StopToken is valid and never reports stopped.
//
// Thread Safety: safe for concurrent use; tokens may be freely copied.
type StopToken struct {
	s *stopState
}

// Stopped returns true once the pool-wide cancellation flag has fired.
// It never returns to false for the runtime instance that issued the token;
// a pool rebuilt by [Pool.Abort] or [Pool.Reset] issues fresh tokens.
func (t StopToken) Stopped() bool {
	return t.s != nil && t.s.stopped()
}

// Done returns a channel that is closed when the cancellation flag fires,
// allowing token-aware tasks to select on cancellation alongside other work.
// The zero token's channel never closes.
func (t StopToken) Done() <-chan struct{} {
	if t.s == nil {
		return neverDone
	}
	return t.s.done
}

// Err returns [ErrStopped] if the flag has fired, and nil otherwise.
func (t StopToken) Err() error {
	if t.Stopped() {
		return ErrStopped
	}
	return nil
}
