package sim

import "github.com/silica-hdl/silica/hdl"

// TimeTeller can be used to get the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInFs
}

// An Evaluator reads and writes signal values on behalf of the driver. It
// must be deterministic against current signal state and must never
// suspend. Signal storage is owned by the evaluator; the driver only
// requests reads and writes through it.
type Evaluator interface {
	// Value evaluates expr against the current signal state.
	Value(expr hdl.Expr) (uint64, error)

	// Assign commits value to the signal lhs references.
	Assign(lhs hdl.Expr, value uint64) error
}

// An EventKernel owns the simulation time base, the time-ordered wait
// queue, and the per-signal trigger registry. The kernel calls Run on a
// process exactly when one of its registered triggers fires or its timed
// wait elapses, and treats a true return from Run as a request to run the
// process again within the same instant.
type EventKernel interface {
	// RegisterTrigger wakes proc at the next instant at which sig takes the
	// value expect.
	RegisterTrigger(proc *Process, sig *hdl.Signal, expect uint64)

	// UnregisterTrigger removes the trigger on sig for proc.
	UnregisterTrigger(proc *Process, sig *hdl.Signal)

	// RequestWait parks proc until the next settle point when interval is
	// nil, for *interval femtoseconds when it is non-negative, or
	// indefinitely (until an explicit external wake) when it is negative.
	RequestWait(proc *Process, interval *VTimeInFs)
}
