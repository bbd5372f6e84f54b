package taskpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// Waiter is the wait protocol shared by [Future] and [Pool]: a blocking wait
// plus timed variants reporting a tri-state [Status]. Any value satisfying
// Waiter can terminate a pipeline.
type Waiter interface {
	// Wait blocks until the result settles (or, for a [Pool], until the pool
	// is idle or paused).
	Wait()

	// WaitFor blocks for at most d, reporting the resulting [Status].
	// A zero or negative duration performs a non-blocking readiness peek.
	WaitFor(d time.Duration) Status

	// WaitUntil blocks until the deadline t, reporting the resulting [Status].
	WaitUntil(t time.Time) Status
}

// AnyFuture is the type-erased view of a result handle, used to treat
// arbitrary (including user-supplied) future implementations as lazy
// arguments via [AwaitAny]. Result must only be called after a wait has
// reported [StatusReady]; it then returns the settled value or failure.
type AnyFuture interface {
	Waiter

	// Result blocks until settled, then returns the value or the failure.
	Result() (any, error)
}

// futureCore is the shared one-shot channel state. Exactly one of the
// fulfill/fail paths wins; the done channel close publishes value and err.
type futureCore[T any] struct {
	done     chan struct{}
	once     sync.Once
	deferred atomic.Bool
	value    T
	err      error
}

func (c *futureCore[T]) settle(value T, err error) (settled bool) {
	c.once.Do(func() {
		c.value = value
		c.err = err
		c.deferred.Store(false)
		close(c.done)
		settled = true
	})
	return
}

// Promise is the write side of a one-shot result channel. Exactly one of
// [Promise.Fulfill] or [Promise.Fail] takes effect; subsequent calls are
// ignored. Safe to call from any goroutine.
type Promise[T any] struct {
	core *futureCore[T]
}

// Future is the read side of a one-shot result channel: it eventually holds
// either the task's value or its failure. Futures are created by the Submit*
// functions (or directly via [NewPromise]) and are safe for concurrent use.
type Future[T any] struct {
	core *futureCore[T]
}

// NewPromise creates a pending one-shot result channel, returning the write
// and read sides. The Submit* functions use this internally; it is exported
// so callers can adapt external completion sources into lazy arguments.
func NewPromise[T any]() (*Promise[T], *Future[T]) {
	core := &futureCore[T]{done: make(chan struct{})}
	return &Promise[T]{core: core}, &Future[T]{core: core}
}

// Fulfill settles the channel with a value. Only the first of Fulfill/Fail
// has an effect; the return value reports whether this call settled it.
func (p *Promise[T]) Fulfill(value T) bool {
	return p.core.settle(value, nil)
}

// Fail settles the channel with a failure. Only the first of Fulfill/Fail
// has an effect; the return value reports whether this call settled it.
func (p *Promise[T]) Fail(err error) bool {
	var zero T
	return p.core.settle(zero, err)
}

// markDeferred sets or clears the deferred hint observed by timed waits.
func (p *Promise[T]) markDeferred(deferred bool) {
	p.core.deferred.Store(deferred)
}

// Wait blocks until the result settles.
func (f *Future[T]) Wait() {
	<-f.core.done
}

// WaitFor blocks for at most d. It reports [StatusReady] if the result is
// settled, [StatusDeferred] (without blocking) if the producing task is
// parked in the deferred queue, and [StatusTimeout] otherwise. A zero or
// negative duration performs a non-blocking peek.
func (f *Future[T]) WaitFor(d time.Duration) Status {
	select {
	case <-f.core.done:
		return StatusReady
	default:
	}
	if f.core.deferred.Load() {
		return StatusDeferred
	}
	if d <= 0 {
		return StatusTimeout
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.core.done:
		return StatusReady
	case <-timer.C:
		return StatusTimeout
	}
}

// WaitUntil blocks until the deadline t, with the same semantics as
// [Future.WaitFor].
func (f *Future[T]) WaitUntil(t time.Time) Status {
	return f.WaitFor(time.Until(t))
}

// Get blocks until the result settles, then returns the value or failure.
// A task failure (the callable's error return, a [PanicError], or
// [ErrAbandoned]) is surfaced here; timed waits report status but not kind.
func (f *Future[T]) Get() (T, error) {
	<-f.core.done
	return f.core.value, f.core.err
}

// Result implements [AnyFuture].
func (f *Future[T]) Result() (any, error) {
	<-f.core.done
	return f.core.value, f.core.err
}

var _ AnyFuture = (*Future[struct{}])(nil)
