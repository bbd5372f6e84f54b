package taskpool

import (
	"runtime"
	"testing"
	"time"
)

// eventually spins until cond returns true, with a 5-second deadline guard.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for condition:", msg)
		default:
			runtime.Gosched()
			time.Sleep(100 * time.Microsecond)
		}
	}
}

// mustNew creates a pool, failing the test on error, and closes it during
// cleanup so stray workers never outlive the test.
func mustNew(t *testing.T, options ...Option) *Pool {
	t.Helper()
	p, err := New(options...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}
