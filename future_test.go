package taskpool

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestPromise_FulfillOnce(t *testing.T) {
	pr, fut := NewPromise[int]()

	if !pr.Fulfill(1) {
		t.Fatal("first Fulfill should settle")
	}
	if pr.Fulfill(2) {
		t.Error("second Fulfill should be ignored")
	}
	if pr.Fail(errors.New("late")) {
		t.Error("Fail after Fulfill should be ignored")
	}

	v, err := fut.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1, got %d", v)
	}
}

func TestPromise_FailOnce(t *testing.T) {
	pr, fut := NewPromise[string]()

	if !pr.Fail(io.EOF) {
		t.Fatal("first Fail should settle")
	}
	if pr.Fulfill("late") {
		t.Error("Fulfill after Fail should be ignored")
	}

	v, err := fut.Get()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if v != "" {
		t.Errorf("expected zero value, got %q", v)
	}
}

func TestFuture_WaitForStatuses(t *testing.T) {
	pr, fut := NewPromise[int]()

	if got := fut.WaitFor(0); got != StatusTimeout {
		t.Errorf("pending zero-duration peek: expected Timeout, got %v", got)
	}
	if got := fut.WaitFor(time.Millisecond); got != StatusTimeout {
		t.Errorf("pending timed wait: expected Timeout, got %v", got)
	}

	pr.Fulfill(7)

	if got := fut.WaitFor(0); got != StatusReady {
		t.Errorf("settled peek: expected Ready, got %v", got)
	}
	if got := fut.WaitUntil(time.Now().Add(-time.Second)); got != StatusReady {
		t.Errorf("settled past-deadline wait: expected Ready, got %v", got)
	}
}

func TestFuture_WaitForSettlesMidWait(t *testing.T) {
	pr, fut := NewPromise[int]()

	go func() {
		time.Sleep(5 * time.Millisecond)
		pr.Fulfill(3)
	}()

	if got := fut.WaitFor(5 * time.Second); got != StatusReady {
		t.Fatalf("expected Ready, got %v", got)
	}
	v, err := fut.Get()
	if err != nil || v != 3 {
		t.Errorf("expected (3, nil), got (%d, %v)", v, err)
	}
}

func TestFuture_AnyFutureView(t *testing.T) {
	pr, fut := NewPromise[int]()
	pr.Fulfill(11)

	var af AnyFuture = fut
	v, err := af.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(int) != 11 {
		t.Errorf("expected 11, got %v", v)
	}
}

func TestStatus_String(t *testing.T) {
	for status, want := range map[Status]string{
		StatusDeferred: "Deferred",
		StatusReady:    "Ready",
		StatusTimeout:  "Timeout",
		Status(99):     "Unknown",
	} {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
