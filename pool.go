package taskpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// notifier is a broadcast point for the completion condition: subscribers
// grab the current generation channel, and broadcast closes and replaces it.
type notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

func (n *notifier) subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

func (n *notifier) broadcast() {
	n.mu.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}

// Pool is the user-visible worker pool facade. It owns a replaceable
// scheduling runtime (ready queue, waiting set, workers, cancellation flag,
// counters) plus the deferred queue, which survives runtime rebuilds.
//
// Instances must be created with [New] and used by pointer; the zero Pool is
// not valid. All methods are safe to call from any goroutine, with one
// documented exception: a task must not wait on the pool executing it.
//
// Pool satisfies the same wait protocol as [Future] ([Pool.Wait],
// [Pool.WaitFor], [Pool.WaitUntil], [Pool.Get]), so a pool can terminate a
// pipeline.
type Pool struct {
	// Prevent copying
	_ [0]func()

	// mu guards the runtime handle swap (abort/reset). Submission and reads
	// take the read side; rebuilds take the write side, so every record is
	// pushed to a coherent runtime.
	mu sync.RWMutex
	rt *poolRuntime

	completion *notifier
	paused     atomic.Bool
	closed     atomic.Bool

	// Deferred queue: FIFO under its own mutex, drained only by
	// DrainDeferred, preserved across abort/reset rebuilds.
	deferredMu   sync.Mutex
	deferred     []*taskRecord
	deferredHead int

	// records recycles taskRecord allocations when WithRecordPooling is
	// enabled; nil otherwise. Futures are never recycled.
	records *sync.Pool

	metrics     *metricsState
	logger      poolLogger
	scanLatency time.Duration
}

// DefaultScanLatency is the default upper bound on a worker's sleep between
// two opportunities to play the scanner role.
const DefaultScanLatency = time.Microsecond

// New creates a pool. With no options, the worker count is the detected
// hardware parallelism (runtime.GOMAXPROCS(0), at least 1) and the scan
// latency is [DefaultScanLatency].
func New(options ...Option) (*Pool, error) {
	cfg, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}

	threads := cfg.threadCount
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
		if threads < 1 {
			threads = 1
		}
	}
	scanLatency := cfg.scanLatency
	if scanLatency <= 0 {
		scanLatency = DefaultScanLatency
	}

	p := &Pool{
		completion:  newNotifier(),
		scanLatency: scanLatency,
		logger:      poolLogger{l: cfg.logger},
	}
	if cfg.metricsEnabled {
		p.metrics = &metricsState{}
	}
	if cfg.recordPooling {
		p.records = &sync.Pool{}
	}
	p.rt = newRuntime(p, threads, scanLatency)
	return p, nil
}

// runtime returns the current runtime handle.
func (p *Pool) runtime() *poolRuntime {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rt
}

// enqueue routes a freshly built record per its readiness: ready queue when
// every wrapped argument is immediate or already ready, waiting set
// otherwise. Deferred submissions skip classification entirely.
func (p *Pool) enqueue(rec *taskRecord, deferred bool) {
	if deferred {
		if p.closed.Load() {
			rec.abandon(ErrPoolClosed)
			return
		}
		rec.markDeferred(true)
		p.deferredMu.Lock()
		p.deferred = append(p.deferred, rec)
		p.deferredMu.Unlock()
		if m := p.metrics; m != nil {
			m.submitted.Add(1)
		}
		return
	}

	p.mu.RLock()
	if p.closed.Load() {
		p.mu.RUnlock()
		rec.abandon(ErrPoolClosed)
		return
	}
	rt := p.rt
	if rec.isReady() {
		rt.pushReady(rec)
	} else {
		rt.pushWaiting(rec)
	}
	rt.notify(1)
	p.mu.RUnlock()
	if m := p.metrics; m != nil {
		m.submitted.Add(1)
	}
}

// acquireRecord returns a task record, recycling through the record pool
// when enabled.
func (p *Pool) acquireRecord() *taskRecord {
	if p.records != nil {
		if v := p.records.Get(); v != nil {
			return v.(*taskRecord)
		}
	}
	return new(taskRecord)
}

// releaseRecord returns a finalized record to the pool, if enabled. The
// caller must guarantee the record is out of every container.
func (p *Pool) releaseRecord(rec *taskRecord) {
	if p.records == nil {
		return
	}
	*rec = taskRecord{}
	p.records.Put(rec)
}

// Queued returns the number of tasks in the ready queue.
func (p *Pool) Queued() int64 { return p.runtime().queued.Load() }

// Waiting returns the number of tasks in the waiting set (lazy arguments
// not yet all ready).
func (p *Pool) Waiting() int64 { return p.runtime().waitingCount.Load() }

// Running returns the number of tasks currently executing on workers.
func (p *Pool) Running() int64 { return p.runtime().running.Load() }

// Total returns Queued() + Waiting() + Running(). Deferred tasks are not
// counted until drained.
func (p *Pool) Total() int64 { return p.runtime().total() }

// ThreadCount returns the current worker count.
func (p *Pool) ThreadCount() int { return p.runtime().threads }

// ScanLatency returns the configured scan latency.
func (p *Pool) ScanLatency() time.Duration { return p.scanLatency }

// StopToken returns a boolean view of the current runtime's cancellation
// flag. Tokens issued before a [Pool.Abort] or [Pool.Reset] keep observing
// the runtime they were issued for; the rebuilt pool issues fresh tokens.
func (p *Pool) StopToken() StopToken {
	return p.runtime().token()
}

// Pause stops workers from starting new executions; already-running tasks
// continue, and submission still enqueues. Wait-family calls return
// immediately while paused, to avoid deadlock.
func (p *Pool) Pause() {
	if p.paused.CompareAndSwap(false, true) {
		p.completion.broadcast()
	}
}

// Resume undoes [Pool.Pause] and wakes all workers.
func (p *Pool) Resume() {
	if p.paused.CompareAndSwap(true, false) {
		p.kickWorkers()
	}
}

// IsPaused reports whether the pool is paused.
func (p *Pool) IsPaused() bool { return p.paused.Load() }

// kickWorkers wakes every worker once, giving the scanner role an immediate
// opportunity to advance waiting → ready.
func (p *Pool) kickWorkers() {
	p.mu.RLock()
	rt := p.rt
	rt.notify(rt.threads)
	p.mu.RUnlock()
}

// Wait blocks until Total() == 0, or returns immediately while the pool is
// paused.
func (p *Pool) Wait() {
	p.waitDeadline(time.Time{}, false)
}

// WaitFor blocks until Total() == 0 (or the pool is paused), for at most d,
// reporting [StatusReady] or [StatusTimeout].
func (p *Pool) WaitFor(d time.Duration) Status {
	return p.waitDeadline(time.Now().Add(d), true)
}

// WaitUntil blocks until Total() == 0 (or the pool is paused), up to the
// deadline t, reporting [StatusReady] or [StatusTimeout].
func (p *Pool) WaitUntil(t time.Time) Status {
	return p.waitDeadline(t, true)
}

// Get waits like [Pool.Wait] and returns true; it exists so a pool satisfies
// the future-like protocol and can sit at the tail of a pipeline.
func (p *Pool) Get() bool {
	p.Wait()
	return true
}

func (p *Pool) waitDeadline(deadline time.Time, timed bool) Status {
	p.kickWorkers()
	for {
		if p.paused.Load() || p.runtime().total() == 0 {
			return StatusReady
		}
		ch := p.completion.subscribe()
		// Recheck after subscribing, so a broadcast between the check and
		// the subscription is not missed.
		if p.paused.Load() || p.runtime().total() == 0 {
			return StatusReady
		}
		if !timed {
			<-ch
			continue
		}
		d := time.Until(deadline)
		if d <= 0 {
			return StatusTimeout
		}
		timer := time.NewTimer(d)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			return StatusTimeout
		}
	}
}

// Abort sets the cancellation flag of the current runtime, joins its
// workers, abandons every record still queued or waiting (their futures
// observe [ErrAbandoned]), and installs a fresh runtime with the same
// thread count and scan latency, leaving the pool immediately usable.
//
// In-flight tasks that consume a [StopToken] observe cancellation when they
// poll it; tasks that do not opt in run to completion before their worker
// exits. The deferred queue is preserved. The pause state is preserved.
// Abort is idempotent: concurrent or repeated calls each degrade to
// rebuilding an already-fresh runtime.
func (p *Pool) Abort() {
	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		return
	}
	old := p.rt
	// Allocate the replacement before tearing anything down, so a failure
	// cannot leave a half-built facade observable.
	p.rt = newRuntime(p, old.threads, p.scanLatency)
	p.mu.Unlock()

	old.shutdown(ErrAbandoned)
	p.completion.broadcast()
	p.logger.lifecycle("pool aborted", old.threads)
}

// Reset pauses the pool, waits for running tasks to finish, replaces the
// runtime with one of threads workers (threads <= 0 selects the detected
// hardware parallelism), and restores the prior pause state. Records still
// queued or waiting are dropped: their futures observe [ErrAbandoned].
// Already-settled futures are untouched, and the deferred queue is
// preserved. The outgoing runtime is shut down only after its running tasks
// have finished; shutting it down sets that runtime's cancellation flag, so
// tokens issued for it report stopped afterwards.
func (p *Pool) Reset(threads int) {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
		if threads < 1 {
			threads = 1
		}
	}

	wasPaused := p.paused.Load()
	p.Pause()
	p.awaitQuiescence()

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		if !wasPaused {
			p.Resume()
		}
		return
	}
	old := p.rt
	p.rt = newRuntime(p, threads, p.scanLatency)
	p.mu.Unlock()

	old.shutdown(ErrAbandoned)

	if !wasPaused {
		p.Resume()
	}
	p.completion.broadcast()
	p.logger.lifecycle("pool reset", threads)
}

// awaitQuiescence blocks until no task is executing. Callers must have
// paused the pool first, so the running count is strictly decreasing.
func (p *Pool) awaitQuiescence() {
	for {
		if p.runtime().running.Load() == 0 {
			return
		}
		ch := p.completion.subscribe()
		if p.runtime().running.Load() == 0 {
			return
		}
		timer := time.NewTimer(idleSleep)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// DrainDeferred pops deferred tasks in submission order, running each
// synchronously on the calling goroutine. A deferred task whose lazy
// arguments are not ready at that moment is not run here; it is pushed onto
// the main runtime's waiting set instead, from which the scanner promotes it
// once its arguments are ready.
func (p *Pool) DrainDeferred() {
	for {
		rec := p.popDeferred()
		if rec == nil {
			return
		}
		rec.markDeferred(false)
		if rec.isReady() {
			rt := p.runtime()
			rt.running.Add(1)
			rec.run(rt.token())
			rt.running.Add(-1)
			p.completion.broadcast()
			continue
		}
		p.mu.RLock()
		rt := p.rt
		rt.pushWaiting(rec)
		rt.notify(1)
		p.mu.RUnlock()
	}
}

// DeferredLen returns the number of tasks parked in the deferred queue.
func (p *Pool) DeferredLen() int {
	p.deferredMu.Lock()
	defer p.deferredMu.Unlock()
	return len(p.deferred) - p.deferredHead
}

func (p *Pool) popDeferred() *taskRecord {
	p.deferredMu.Lock()
	defer p.deferredMu.Unlock()
	if p.deferredHead >= len(p.deferred) {
		return nil
	}
	rec := p.deferred[p.deferredHead]
	p.deferred[p.deferredHead] = nil
	p.deferredHead++
	if p.deferredHead == len(p.deferred) {
		p.deferred = p.deferred[:0]
		p.deferredHead = 0
	}
	return rec
}

// Close permanently shuts the pool down: the cancellation flag fires,
// workers are joined, and every record still queued, waiting, or parked in
// the deferred queue is abandoned (its future observes [ErrAbandoned]).
// Submissions after Close yield futures failed with [ErrPoolClosed].
//
// The first call returns nil; repeat calls return [ErrPoolClosed].
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	rt := p.rt
	p.mu.Unlock()

	rt.shutdown(ErrAbandoned)

	for {
		rec := p.popDeferred()
		if rec == nil {
			break
		}
		rec.abandon(ErrAbandoned)
	}

	p.completion.broadcast()
	p.logger.lifecycle("pool closed", rt.threads)
	return nil
}

var _ Waiter = (*Pool)(nil)
