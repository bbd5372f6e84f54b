package taskpool

// taskRecord is the type-erased execution closure built by the Submit*
// functions. A record is in exactly one of {ready queue, waiting set,
// deferred queue, executing, finalized}, and transitions are monotone;
// abandonment short-circuits to finalized only for records never popped for
// execution.
//
// The three capabilities mirror the record contract: a pure readiness
// predicate, a run-at-most-once closure that settles the future and never
// panics out of the worker, and an abandon path that breaks the future.
type taskRecord struct {
	// ready is the readiness predicate over the record's lazy arguments.
	// nil means the record has no lazy arguments and is always ready.
	ready func() bool

	// run executes the callable with the supplied stop token, routing the
	// outcome (value, error, or recovered panic) into the future. It is
	// called at most once, and only after ready has returned true.
	run func(tok StopToken)

	// abandon settles the future with err without executing. Called when
	// the record is dropped undispatched (abort, reset, close, or submission
	// to a closed pool).
	abandon func(err error)

	// hint toggles the deferred-queue hint on the future, so timed waits
	// can report StatusDeferred while the record is parked.
	hint func(deferred bool)
}

func (r *taskRecord) isReady() bool {
	return r.ready == nil || r.ready()
}

func (r *taskRecord) markDeferred(deferred bool) {
	if r.hint != nil {
		r.hint(deferred)
	}
}
