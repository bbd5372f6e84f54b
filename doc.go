// Package taskpool provides a fixed-size worker pool that executes
// user-supplied tasks and returns result handles (futures), with support for
// lazy (future-typed) arguments, cooperative cancellation, and composable
// pipelines.
//
// # Architecture
//
// The pool is built around a replaceable scheduling runtime consisting of a
// FIFO ready queue, an unordered waiting set, and N worker goroutines. A task
// submitted with only immediate (or already-settled) arguments lands in the
// ready queue and is picked up by the next free worker. A task submitted with
// at least one pending [Future] argument lands in the waiting set instead,
// where it occupies no worker; idle workers opportunistically play the
// "scanner" role, rechecking readiness predicates and migrating newly-ready
// tasks into the ready queue.
//
// Cancellation is a pool-wide flag observable through [StopToken] values
// issued by [Pool.StopToken]. [Pool.Abort] sets the flag, joins the workers,
// abandons undispatched tasks (their futures observe [ErrAbandoned]), and
// rebuilds the runtime, leaving the pool immediately usable.
//
// # Submission
//
// Submission entry points are arity-generic free functions: [Submit],
// [Submit1], [Submit2], [Submit3], with [SubmitToken] / [SubmitToken1]
// variants for callables that opt into cancellation, and [SubmitDeferred]
// variants for tasks executed by [Pool.DrainDeferred] on the caller's
// goroutine. Lazy arguments are wrapped with [Value], [Await], or [AwaitAny].
//
// # Pipelines
//
// [Pipe] and [PipeThen] chain stages so that each stage consumes the previous
// stage's future as a lazy argument. A pipeline waits for its stage on
// [Pipeline.Close] unless the future was extracted with [Pipeline.Detach];
// the conventional usage is:
//
//	pl := taskpool.PipeThen(taskpool.Pipe(pool, produce), consume)
//	defer pl.Close()
//
// # Thread Safety
//
//   - All [Pool] methods and all Submit* functions are safe to call from any
//     goroutine, workers included.
//   - [Future] and [StopToken] are safe for concurrent use.
//   - A task must not wait on the pool that executes it; doing so deadlocks.
//
// # Usage
//
//	pool, err := taskpool.New(taskpool.WithThreadCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	fut := taskpool.Submit(pool, func() (int, error) {
//	    return 42, nil
//	})
//	v, err := fut.Get()
//
// The pool itself satisfies the same wait protocol as futures ([Pool.Wait],
// [Pool.WaitFor], [Pool.WaitUntil], [Pool.Get]), so a pool can sit at the
// tail of a pipeline as the final synchronization point.
package taskpool
