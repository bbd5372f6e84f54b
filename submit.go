package taskpool

// Submission entry points. The source material dispatches on callable shape
// at compile time; here that is rendered as explicit arity-generic variants:
// Submit/Submit1/Submit2/Submit3 for plain callables, SubmitToken variants
// for callables that opt into cancellation (the pool supplies the executing
// runtime's [StopToken] at call time), and SubmitDeferred variants for tasks
// parked until [Pool.DrainDeferred].
//
// Every variant is safe to call from any goroutine, workers included. Note
// that a task waiting on its own pool deadlocks.

// Submit submits a callable with no arguments, returning its result handle.
// A nil callable yields a future already failed with [ErrInvalidSubmission];
// nothing is enqueued and the counters are untouched.
//
// Side-effect-only tasks conventionally use R = struct{}. Discarding the
// returned future is permitted, but failures are not silently dropped: they
// remain observable on the future and, when metrics are enabled, in the
// failure counter.
func Submit[R any](p *Pool, fn func() (R, error)) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, nil, func(StopToken) (R, error) { return fn() })
}

// SubmitToken submits a callable that observes the pool's cancellation flag.
// The token is supplied by the pool at call time and is bound to the runtime
// executing the task, so it fires on [Pool.Abort] even if the runtime has
// since been rebuilt.
func SubmitToken[R any](p *Pool, fn func(StopToken) (R, error)) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, nil, fn)
}

// Submit1 submits a callable with one wrapped argument. If the argument is
// immediate or already settled, the task goes directly to the ready queue;
// otherwise it sits in the waiting set, occupying no worker, until the
// scanner observes the argument ready.
func Submit1[A, R any](p *Pool, fn func(A) (R, error), a Arg[A]) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, readyPred1(a), func(_ StopToken) (R, error) {
		av, err := a.Extract()
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(av)
	})
}

// SubmitToken1 is [Submit1] for a callable that also observes the pool's
// cancellation flag.
func SubmitToken1[A, R any](p *Pool, fn func(StopToken, A) (R, error), a Arg[A]) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, readyPred1(a), func(tok StopToken) (R, error) {
		av, err := a.Extract()
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(tok, av)
	})
}

// Submit2 submits a callable with two wrapped arguments.
func Submit2[A, B, R any](p *Pool, fn func(A, B) (R, error), a Arg[A], b Arg[B]) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, readyPred2(a, b), func(_ StopToken) (R, error) {
		var zero R
		av, err := a.Extract()
		if err != nil {
			return zero, err
		}
		bv, err := b.Extract()
		if err != nil {
			return zero, err
		}
		return fn(av, bv)
	})
}

// Submit3 submits a callable with three wrapped arguments.
func Submit3[A, B, C, R any](p *Pool, fn func(A, B, C) (R, error), a Arg[A], b Arg[B], c Arg[C]) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, false, readyPred3(a, b, c), func(_ StopToken) (R, error) {
		var zero R
		av, err := a.Extract()
		if err != nil {
			return zero, err
		}
		bv, err := b.Extract()
		if err != nil {
			return zero, err
		}
		cv, err := c.Extract()
		if err != nil {
			return zero, err
		}
		return fn(av, bv, cv)
	})
}

// SubmitDeferred parks the task in the deferred queue; it executes only when
// [Pool.DrainDeferred] runs it on the draining goroutine. Until then, timed
// waits on the returned future report [StatusDeferred].
func SubmitDeferred[R any](p *Pool, fn func() (R, error)) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, true, nil, func(StopToken) (R, error) { return fn() })
}

// SubmitDeferredToken is [SubmitDeferred] for a token-aware callable.
func SubmitDeferredToken[R any](p *Pool, fn func(StopToken) (R, error)) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, true, nil, fn)
}

// SubmitDeferred1 is [Submit1] in deferred mode. Deferred submission skips
// readiness classification; the argument is checked when the queue drains.
func SubmitDeferred1[A, R any](p *Pool, fn func(A) (R, error), a Arg[A]) *Future[R] {
	if fn == nil {
		return failedFuture[R](ErrInvalidSubmission)
	}
	return dispatch(p, true, readyPred1(a), func(_ StopToken) (R, error) {
		av, err := a.Extract()
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(av)
	})
}

// readyPred1 returns nil (always ready) when the argument is immediate, so
// that argument-free readiness costs nothing on the scan path.
func readyPred1[A any](a Arg[A]) func() bool {
	if !a.pending() {
		return nil
	}
	return a.Ready
}

func readyPred2[A, B any](a Arg[A], b Arg[B]) func() bool {
	if !a.pending() && !b.pending() {
		return nil
	}
	return func() bool { return a.Ready() && b.Ready() }
}

func readyPred3[A, B, C any](a Arg[A], b Arg[B], c Arg[C]) func() bool {
	if !a.pending() && !b.pending() && !c.pending() {
		return nil
	}
	return func() bool { return a.Ready() && b.Ready() && c.Ready() }
}

func failedFuture[R any](err error) *Future[R] {
	pr, fut := NewPromise[R]()
	pr.Fail(err)
	return fut
}

// dispatch builds the task record around the promise and enqueues it.
func dispatch[R any](p *Pool, deferred bool, ready func() bool, call func(StopToken) (R, error)) *Future[R] {
	pr, fut := NewPromise[R]()

	rec := p.acquireRecord()
	rec.ready = ready
	rec.hint = pr.markDeferred
	rec.run = func(tok StopToken) {
		defer func() {
			if r := recover(); r != nil {
				if m := p.metrics; m != nil {
					m.failed.Add(1)
				}
				p.logger.taskPanic(r)
				pr.Fail(&PanicError{Value: r})
			}
			p.releaseRecord(rec)
		}()
		v, err := call(tok)
		if err != nil {
			if m := p.metrics; m != nil {
				m.failed.Add(1)
			}
			pr.Fail(err)
			return
		}
		if m := p.metrics; m != nil {
			m.executed.Add(1)
		}
		pr.Fulfill(v)
	}
	rec.abandon = func(err error) {
		if m := p.metrics; m != nil {
			m.abandoned.Add(1)
		}
		pr.Fail(err)
		p.releaseRecord(rec)
	}

	p.enqueue(rec, deferred)
	return fut
}
