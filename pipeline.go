// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package taskpool

import (
	"sync"
)

// Pipeline is a scoped adapter wrapping a pool reference and the future of
// the most recent stage. Stages compose with [Pipe] / [PipeThen], each stage
// consuming the previous stage's future as a lazy argument, so a pipeline
// never occupies a worker while an upstream stage is still producing.
//
// A pipeline enforces structured concurrency by default: [Pipeline.Close]
// blocks on the stage future unless it was extracted with
// [Pipeline.Detach]. The conventional usage is:
//
//	pl := taskpool.PipeThen(taskpool.Pipe(pool, produce), consume)
//	defer pl.Close()
//	v, err := pl.Get()
//
// A pipeline must not outlive its pool. Chaining consumes the source
// pipeline: after PipeThen (or Detach, or Close), the source must no longer
// be used, and further chaining from it panics.
type Pipeline[T any] struct {
	pool *Pool
	mu   sync.Mutex
	fut  *Future[T] // nil once consumed (chained, detached, or closed)
}

// Pipe starts a pipeline: the stage future corresponds to Submit(p, fn).
func Pipe[R any](p *Pool, fn func() (R, error)) *Pipeline[R] {
	return &Pipeline[R]{pool: p, fut: Submit(p, fn)}
}

// PipeToken starts a pipeline with a token-aware head stage.
func PipeToken[R any](p *Pool, fn func(StopToken) (R, error)) *Pipeline[R] {
	return &Pipeline[R]{pool: p, fut: SubmitToken(p, fn)}
}

// PipeThen chains a stage onto pl: the new stage takes pl's future as a lazy
// argument. pl is consumed and must no longer be used.
func PipeThen[T, R any](pl *Pipeline[T], fn func(T) (R, error)) *Pipeline[R] {
	fut := pl.take()
	return &Pipeline[R]{pool: pl.pool, fut: Submit1(pl.pool, fn, Await(fut))}
}

// PipeThenToken chains a token-aware stage onto pl, consuming it.
func PipeThenToken[T, R any](pl *Pipeline[T], fn func(StopToken, T) (R, error)) *Pipeline[R] {
	fut := pl.take()
	return &Pipeline[R]{pool: pl.pool, fut: SubmitToken1(pl.pool, fn, Await(fut))}
}

// take moves the future out, leaving the pipeline consumed.
func (pl *Pipeline[T]) take() *Future[T] {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.fut == nil {
		panic("taskpool: pipeline already consumed")
	}
	fut := pl.fut
	pl.fut = nil
	return fut
}

// peek returns the current future without consuming, or nil if consumed.
func (pl *Pipeline[T]) peek() *Future[T] {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.fut
}

// Detach extracts the underlying future, handing it to the caller and
// suppressing the wait on [Pipeline.Close]. This is the only supported way
// to escape the wait-on-close invariant. Panics if already consumed.
func (pl *Pipeline[T]) Detach() *Future[T] {
	return pl.take()
}

// Wait blocks until the stage future settles. No-op if the pipeline was
// consumed.
func (pl *Pipeline[T]) Wait() {
	if fut := pl.peek(); fut != nil {
		fut.Wait()
	}
}

// Get blocks until the stage future settles and returns its value or
// failure, without consuming the pipeline. If the pipeline was consumed,
// returns [ErrAbandoned].
func (pl *Pipeline[T]) Get() (T, error) {
	fut := pl.peek()
	if fut == nil {
		var zero T
		return zero, ErrAbandoned
	}
	return fut.Get()
}

// Close waits on the stage future if it is still held (not detached, not
// chained, not previously closed), then releases it. Idempotent and safe
// under concurrent [Pool.Abort]: an aborted pool settles undispatched
// futures with [ErrAbandoned], so the wait terminates.
//
// The returned error is the stage's failure, if any; nil after a successful
// stage, a detach, or a repeat call.
func (pl *Pipeline[T]) Close() error {
	pl.mu.Lock()
	fut := pl.fut
	pl.fut = nil
	pl.mu.Unlock()
	if fut == nil {
		return nil
	}
	_, err := fut.Get()
	return err
}
