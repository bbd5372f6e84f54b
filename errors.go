package taskpool

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrInvalidSubmission is the failure observed on a future returned by a
	// Submit* call that could not construct a valid task record (e.g. a nil
	// callable). The failure is observable synchronously, without any task
	// having been enqueued.
	ErrInvalidSubmission = errors.New("taskpool: invalid submission")

	// ErrAbandoned is the failure observed on a future whose task record was
	// dropped before execution: the pool was aborted or reset while the task
	// was still queued or waiting, or the record was otherwise discarded
	// unfinished. It is the terminal "broken channel" state.
	ErrAbandoned = errors.New("taskpool: result abandoned")

	// ErrStopped is reported by [StopToken.Err] once the pool-wide
	// cancellation flag has fired.
	ErrStopped = errors.New("taskpool: pool stopped")

	// ErrPoolClosed is returned by [Pool.Close] on repeat calls, and is the
	// failure observed on futures of tasks submitted after Close.
	ErrPoolClosed = errors.New("taskpool: submit on closed pool")
)

// PanicError wraps a panic recovered from a task callable. The worker never
// propagates the panic; it is captured into the task's future and surfaced
// to callers of [Future.Get].
type PanicError struct {
	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("taskpool: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As] for error matching
// through the cause chain. If the panic Value is not an error, returns nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ArgumentTypeError is the failure observed when a lazy argument supplied via
// [AwaitAny] settles with a dynamic type that does not match the parameter
// type of the callable.
type ArgumentTypeError struct {
	// Value is the settled value of the foreign future.
	Value any
	// Want names the expected parameter type.
	Want string
}

// Error implements the error interface.
func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("taskpool: lazy argument type %T does not match parameter type %s", e.Value, e.Want)
}
