package taskpool

import (
	"errors"
	"testing"
	"time"
)

func TestPipeline_SumStages(t *testing.T) {
	p := mustNew(t, WithThreadCount(2))

	pl := PipeThen(
		Pipe(p, func() ([]int, error) { return []int{1, 2, 3, 4}, nil }),
		func(xs []int) (int, error) { return xs[0] + xs[1] + xs[2] + xs[3], nil },
	)
	defer pl.Close()

	v, err := pl.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10 {
		t.Errorf("expected 10, got %d", v)
	}
}

func TestPipeline_Composition(t *testing.T) {
	p := mustNew(t, WithThreadCount(2))

	f := func() (int, error) { return 6, nil }
	g := func(x int) (int, error) { return x * 7, nil }

	pl := PipeThen(Pipe(p, f), g)
	defer pl.Close()

	// The value observed at the sink equals g(f()).
	v, err := pl.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := g(6)
	if v != want {
		t.Errorf("expected g(f()) = %d, got %d", want, v)
	}
}

func TestPipeline_DetachSuppressesWait(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	gate := make(chan struct{})
	pl := Pipe(p, func() (int, error) {
		<-gate
		return 1, nil
	})

	fut := pl.Detach()

	// Close after detach must not block on the still-running stage.
	done := make(chan struct{})
	go func() {
		_ = pl.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked after Detach")
	}

	close(gate)
	if v, err := fut.Get(); err != nil || v != 1 {
		t.Errorf("expected (1, nil), got (%d, %v)", v, err)
	}
}

func TestPipeline_CloseWaitsAndReportsFailure(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	sentinel := errors.New("stage boom")
	pl := Pipe(p, func() (int, error) { return 0, sentinel })

	if err := pl.Close(); !errors.Is(err, sentinel) {
		t.Errorf("Close must surface the stage failure, got %v", err)
	}
	// Idempotent.
	if err := pl.Close(); err != nil {
		t.Errorf("repeat Close must be a no-op, got %v", err)
	}
}

func TestPipeline_ChainConsumesSource(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	head := Pipe(p, func() (int, error) { return 1, nil })
	tail := PipeThen(head, func(x int) (int, error) { return x + 1, nil })
	defer tail.Close()

	defer func() {
		if recover() == nil {
			t.Error("using a consumed pipeline must panic")
		}
	}()
	head.Detach()
}

func TestPipeline_GetAfterCloseReportsAbandoned(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	pl := Pipe(p, func() (int, error) { return 1, nil })
	_ = pl.Close()

	if _, err := pl.Get(); !errors.Is(err, ErrAbandoned) {
		t.Errorf("expected ErrAbandoned, got %v", err)
	}
}

func TestPipeline_CloseDuringAbort(t *testing.T) {
	p := mustNew(t, WithThreadCount(1))

	pl := PipeToken(p, func(tok StopToken) (int, error) {
		<-tok.Done()
		return 0, tok.Err()
	})

	eventually(t, func() bool { return p.Running() == 1 }, "stage running")

	go p.Abort()

	// The drop-time wait must observe cancellation rather than deadlock.
	done := make(chan error, 1)
	go func() { done <- pl.Close() }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrStopped) {
			t.Errorf("expected ErrStopped from the cancelled stage, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline Close deadlocked during abort")
	}
}

func TestPipeline_TokenStages(t *testing.T) {
	p := mustNew(t, WithThreadCount(2))

	pl := PipeThenToken(
		PipeToken(p, func(tok StopToken) (int, error) { return 2, tok.Err() }),
		func(tok StopToken, x int) (int, error) { return x * 3, tok.Err() },
	)
	defer pl.Close()

	if v, err := pl.Get(); err != nil || v != 6 {
		t.Errorf("expected (6, nil), got (%d, %v)", v, err)
	}
}

func TestPipeline_PoolAtTail(t *testing.T) {
	p := mustNew(t, WithThreadCount(2))

	fut := PipeThen(
		Pipe(p, func() (int, error) { return 1, nil }),
		func(x int) (int, error) { return x + 1, nil },
	).Detach()

	// The pool satisfies the future-like protocol, so it can act as the
	// final synchronization point of a pipeline.
	var w Waiter = p
	w.Wait()

	if got := fut.WaitFor(0); got != StatusReady {
		t.Errorf("stage must be settled once the pool is idle, got %v", got)
	}
}
