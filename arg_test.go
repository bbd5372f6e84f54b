package taskpool

import (
	"errors"
	"testing"
	"time"
)

func TestArg_Immediate(t *testing.T) {
	a := Value(42)
	if !a.Ready() {
		t.Fatal("immediate argument must always be ready")
	}
	// Ready is pure: safe to call arbitrarily often.
	for i := 0; i < 3; i++ {
		if !a.Ready() {
			t.Fatal("Ready must be repeatable")
		}
	}
	v, err := a.Extract()
	if err != nil || v != 42 {
		t.Errorf("expected (42, nil), got (%d, %v)", v, err)
	}
}

func TestArg_ZeroValueIsImmediate(t *testing.T) {
	var a Arg[string]
	if !a.Ready() {
		t.Fatal("zero Arg must be ready")
	}
	v, err := a.Extract()
	if err != nil || v != "" {
		t.Errorf("expected zero value, got (%q, %v)", v, err)
	}
}

func TestArg_Pending(t *testing.T) {
	pr, fut := NewPromise[int]()
	a := Await(fut)

	if a.Ready() {
		t.Fatal("pending argument must not be ready before settlement")
	}

	pr.Fulfill(5)

	if !a.Ready() {
		t.Fatal("pending argument must be ready after settlement")
	}
	v, err := a.Extract()
	if err != nil || v != 5 {
		t.Errorf("expected (5, nil), got (%d, %v)", v, err)
	}
}

func TestArg_PendingFailure(t *testing.T) {
	pr, fut := NewPromise[int]()
	a := Await(fut)

	sentinel := errors.New("producer failed")
	pr.Fail(sentinel)

	// A failed handle is settled, hence ready; the failure surfaces from
	// Extract.
	if !a.Ready() {
		t.Fatal("failed handle must report ready")
	}
	if _, err := a.Extract(); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel, got %v", err)
	}
}

// stubFuture is a minimal user-supplied AnyFuture implementation.
type stubFuture struct {
	value any
	err   error
}

func (s *stubFuture) Wait() {}

func (s *stubFuture) WaitFor(time.Duration) Status { return StatusReady }

func (s *stubFuture) WaitUntil(time.Time) Status { return StatusReady }

func (s *stubFuture) Result() (any, error) { return s.value, s.err }

func TestArg_AwaitAny(t *testing.T) {
	a := AwaitAny[int](&stubFuture{value: 13})

	if !a.Ready() {
		t.Fatal("settled foreign future must be ready")
	}
	v, err := a.Extract()
	if err != nil || v != 13 {
		t.Errorf("expected (13, nil), got (%d, %v)", v, err)
	}
}

func TestArg_AwaitAnyTypeMismatch(t *testing.T) {
	a := AwaitAny[int](&stubFuture{value: "not an int"})

	_, err := a.Extract()
	var typeErr *ArgumentTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected *ArgumentTypeError, got %v", err)
	}
	if typeErr.Value != "not an int" {
		t.Errorf("unexpected offending value: %v", typeErr.Value)
	}
}

func TestArg_AwaitAnyInTask(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	fut := Submit1(p, func(x int) (int, error) { return x + 1, nil },
		AwaitAny[int](&stubFuture{value: 9}))

	if v, err := fut.Get(); err != nil || v != 10 {
		t.Errorf("expected (10, nil), got (%d, %v)", v, err)
	}
}
