package taskpool

// Status reports the outcome of a timed wait on a [Future] or [Pool].
//
// The values mirror the tri-state wait protocol of the result-channel
// contract: a wait either observes a settled result, elapses, or reports
// that no execution has been scheduled yet (deferred submission).
type Status int

const (
	// StatusDeferred indicates the producing task is parked in the deferred
	// queue and will not execute until [Pool.DrainDeferred] is called.
	// Timed waits on such futures return immediately rather than blocking.
	StatusDeferred Status = iota

	// StatusReady indicates the result is settled (fulfilled or failed).
	StatusReady

	// StatusTimeout indicates the wait elapsed before the result settled.
	StatusTimeout
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusDeferred:
		return "Deferred"
	case StatusReady:
		return "Ready"
	case StatusTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}
