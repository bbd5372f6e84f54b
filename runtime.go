package taskpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// poolRuntime is the replaceable scheduling runtime behind a [Pool] facade:
// the ready queue, waiting set, worker goroutines, cancellation flag, and
// the three counters. Abort and reset tear a runtime down and install a
// fresh one; the facade (and its deferred queue) survive.
type poolRuntime struct {
	pool *Pool

	stop *stopState
	wg   sync.WaitGroup

	// Ready queue: FIFO under its own mutex, head-indexed to avoid shifting.
	readyMu   sync.Mutex
	ready     []*taskRecord
	readyHead int

	// Waiting set: unordered, under its own mutex so scanning does not
	// contend with ready-queue pops. Workers TryLock it opportunistically.
	waitingMu sync.Mutex
	waiting   []*taskRecord

	// wake is the worker wake channel (capacity = thread count); sends are
	// non-blocking, so a full channel simply means enough wake-ups are
	// already pending.
	wake chan struct{}

	threads     int
	scanLatency time.Duration

	// Counters, mutated together with the queue action they describe.
	// total = queued + waitingCount + running.
	queued       atomic.Int64
	waitingCount atomic.Int64
	running      atomic.Int64
}

// idleSleep bounds the worker sleep when the waiting set is empty and there
// is no scanning to be done promptly.
const idleSleep = time.Millisecond

func newRuntime(pool *Pool, threads int, scanLatency time.Duration) *poolRuntime {
	rt := &poolRuntime{
		pool:        pool,
		stop:        newStopState(),
		wake:        make(chan struct{}, threads),
		threads:     threads,
		scanLatency: scanLatency,
	}
	rt.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go rt.worker()
	}
	return rt
}

func (rt *poolRuntime) token() StopToken {
	return StopToken{s: rt.stop}
}

func (rt *poolRuntime) total() int64 {
	return rt.queued.Load() + rt.waitingCount.Load() + rt.running.Load()
}

func (rt *poolRuntime) pushReady(rec *taskRecord) {
	rt.readyMu.Lock()
	rt.ready = append(rt.ready, rec)
	rt.queued.Add(1)
	rt.readyMu.Unlock()
	if m := rt.pool.metrics; m != nil {
		m.observeQueued(rt.queued.Load())
	}
}

func (rt *poolRuntime) pushWaiting(rec *taskRecord) {
	rt.waitingMu.Lock()
	rt.waiting = append(rt.waiting, rec)
	rt.waitingCount.Add(1)
	rt.waitingMu.Unlock()
	if m := rt.pool.metrics; m != nil {
		m.observeWaiting(rt.waitingCount.Load())
	}
}

// popReady pops the oldest ready record, pairing the queued→running counter
// handoff with the removal. Returns nil while the pool is paused so that
// workers start no new executions.
func (rt *poolRuntime) popReady() *taskRecord {
	if rt.pool.paused.Load() {
		return nil
	}
	rt.readyMu.Lock()
	if rt.readyHead >= len(rt.ready) {
		rt.readyMu.Unlock()
		return nil
	}
	rec := rt.ready[rt.readyHead]
	rt.ready[rt.readyHead] = nil
	rt.readyHead++
	if rt.readyHead == len(rt.ready) {
		rt.ready = rt.ready[:0]
		rt.readyHead = 0
	}
	rt.queued.Add(-1)
	rt.running.Add(1)
	rt.readyMu.Unlock()
	return rec
}

// notify wakes up to n workers; never blocks.
func (rt *poolRuntime) notify(n int) {
	for i := 0; i < n; i++ {
		select {
		case rt.wake <- struct{}{}:
		default:
			return
		}
	}
}

// worker is the loop run by each of the runtime's goroutines: opportunistic
// scan, drain one ready task, otherwise sleep on the wake channel with a
// timeout of the scan latency while tasks are waiting, and idleSleep
// otherwise.
func (rt *poolRuntime) worker() {
	defer rt.wg.Done()
	for {
		if rt.stop.stopped() {
			return
		}

		rt.scanWaiting()

		if rec := rt.popReady(); rec != nil {
			rt.execute(rec)
			continue
		}

		// Nothing popped: let any Wait caller recheck its predicate.
		rt.pool.completion.broadcast()

		timeout := idleSleep
		if rt.waitingCount.Load() > 0 {
			timeout = rt.scanLatency
		}
		timer := time.NewTimer(timeout)
		select {
		case <-rt.stop.done:
			timer.Stop()
			return
		case <-rt.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (rt *poolRuntime) execute(rec *taskRecord) {
	rec.run(rt.token())
	rt.running.Add(-1)
	rt.pool.completion.broadcast()
}

// scanWaiting plays the scanner role: try-acquire the waiting set, partition
// records by readiness, migrate the ready ones into the ready queue, and
// wake up to min(ready, threads) workers. If cancellation fired, the set is
// yielded without modification.
func (rt *poolRuntime) scanWaiting() {
	if !rt.waitingMu.TryLock() {
		return
	}
	if rt.stop.stopped() || len(rt.waiting) == 0 {
		rt.waitingMu.Unlock()
		return
	}

	var promoted []*taskRecord
	keep := rt.waiting[:0]
	for _, rec := range rt.waiting {
		if rec.isReady() {
			promoted = append(promoted, rec)
		} else {
			keep = append(keep, rec)
		}
	}
	for i := len(keep); i < len(rt.waiting); i++ {
		rt.waiting[i] = nil
	}
	rt.waiting = keep
	rt.waitingMu.Unlock()

	if m := rt.pool.metrics; m != nil {
		m.scans.Add(1)
	}
	if len(promoted) == 0 {
		return
	}

	// Account and log before publishing, so observers woken by the promoted
	// tasks see the scanner's bookkeeping.
	if m := rt.pool.metrics; m != nil {
		m.promotions.Add(uint64(len(promoted)))
	}
	rt.pool.logPromoted(len(promoted))

	// Promote before adjusting the waiting counter so concurrent observers
	// never see a transient total of zero while records are in flight.
	rt.readyMu.Lock()
	rt.ready = append(rt.ready, promoted...)
	rt.queued.Add(int64(len(promoted)))
	rt.readyMu.Unlock()
	rt.waitingCount.Add(-int64(len(promoted)))

	if m := rt.pool.metrics; m != nil {
		m.observeQueued(rt.queued.Load())
	}

	n := len(promoted)
	if n > rt.threads {
		n = rt.threads
	}
	rt.notify(n)
}

// shutdown fires the cancellation flag, joins the workers, and abandons all
// records still queued or waiting (their futures observe err). The runtime
// must already have been detached from the facade; no new records can arrive.
func (rt *poolRuntime) shutdown(err error) {
	rt.stop.stop()
	rt.wg.Wait()

	rt.readyMu.Lock()
	ready := rt.ready[rt.readyHead:]
	rt.ready = nil
	rt.readyHead = 0
	rt.readyMu.Unlock()
	for _, rec := range ready {
		rt.queued.Add(-1)
		rec.abandon(err)
	}

	rt.waitingMu.Lock()
	waiting := rt.waiting
	rt.waiting = nil
	rt.waitingMu.Unlock()
	for _, rec := range waiting {
		rt.waitingCount.Add(-1)
		rec.abandon(err)
	}

	rt.pool.completion.broadcast()
}
