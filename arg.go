package taskpool

import (
	"fmt"
)

// Arg is the uniform value-or-future argument representation accepted by the
// arity-generic Submit* functions. An Arg is either immediate (constructed
// with [Value], ready at construction) or pending (constructed with [Await]
// or [AwaitAny], ready once the underlying handle settles).
//
// Ready is a pure predicate, safe to call arbitrarily often. Extract
// consumes the wrapper and may be called at most once, only after Ready has
// returned true; the pool guarantees this by running a task only after every
// wrapped argument reported ready.
//
// The zero Arg is immediate with the zero value of T.
type Arg[T any] struct {
	fut    *Future[T]
	anyFut AnyFuture
	value  T
}

// Value wraps an immediate argument.
func Value[T any](v T) Arg[T] {
	return Arg[T]{value: v}
}

// Await wraps a pending result handle from a prior submission. The task
// consuming the Arg will not execute until the handle settles; if the
// producing task failed, the consuming task fails with the same error
// without invoking its callable.
func Await[T any](f *Future[T]) Arg[T] {
	return Arg[T]{fut: f}
}

// AwaitAny wraps any value satisfying the [AnyFuture] protocol, allowing
// user-supplied future implementations as lazy arguments. The settled value
// must have dynamic type T; otherwise the consuming task fails with an
// [ArgumentTypeError].
func AwaitAny[T any](f AnyFuture) Arg[T] {
	return Arg[T]{anyFut: f}
}

// Ready reports whether the argument can be extracted without blocking:
// always true for immediate arguments, and true for pending arguments iff
// the handle reports ready on a zero-duration timed wait.
func (a Arg[T]) Ready() bool {
	switch {
	case a.fut != nil:
		return a.fut.WaitFor(0) == StatusReady
	case a.anyFut != nil:
		return a.anyFut.WaitFor(0) == StatusReady
	default:
		return true
	}
}

// Extract moves the argument value out of the wrapper. For pending
// arguments this delegates to the handle's get, which is guaranteed
// non-blocking at the pool's call sites (they run only after Ready returned
// true for all wrapped arguments of the task).
func (a Arg[T]) Extract() (T, error) {
	switch {
	case a.fut != nil:
		return a.fut.Get()
	case a.anyFut != nil:
		v, err := a.anyFut.Result()
		if err != nil {
			var zero T
			return zero, err
		}
		t, ok := v.(T)
		if !ok {
			var zero T
			return zero, &ArgumentTypeError{Value: v, Want: fmt.Sprintf("%T", zero)}
		}
		return t, nil
	default:
		return a.value, nil
	}
}

// pending reports whether the argument wraps a result handle.
func (a Arg[T]) pending() bool {
	return a.fut != nil || a.anyFut != nil
}
