package sim

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/silica-hdl/silica/hdl"
)

// A ProcessFunc is the body of a simulated process. It runs on its own
// goroutine and interacts with the simulation exclusively through ctx: each
// call to a ctx method hands one command to the driver and parks the body
// until the driver resumes it.
type ProcessFunc func(ctx *ProcContext) error

type resumePacket struct {
	value uint64
	err   error
}

type yieldPacket struct {
	cmd  Command
	done bool
	err  error
}

// A coroutine is an explicitly resumable computation: a goroutine that
// parks at every yield until the driver sends the next response value or
// injects an error. The body does not start executing until the first send.
type coroutine struct {
	resumeCh chan resumePacket
	yieldCh  chan yieldPacket
	abortCh  chan struct{}
	done     bool
	ctx      *ProcContext
}

func newCoroutine(body ProcessFunc) *coroutine {
	c := &coroutine{
		resumeCh: make(chan resumePacket),
		yieldCh:  make(chan yieldPacket),
		abortCh:  make(chan struct{}),
	}
	c.ctx = &ProcContext{co: c}

	go func() {
		select {
		case <-c.resumeCh:
		case <-c.abortCh:
			return
		}

		err := runBody(body, c.ctx)

		select {
		case c.yieldCh <- yieldPacket{done: true, err: err}:
		case <-c.abortCh:
		}
	}()

	return c
}

// runBody executes the body and converts a panic into a fatal process
// error, so that a buggy body kills its own process instead of the whole
// program. runtime.Goexit during an abort passes through untouched.
func runBody(body ProcessFunc, ctx *ProcContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process body panicked: %v", r)
		}
	}()

	return body(ctx)
}

// send resumes the computation with a response value, or re-injects a
// previously caught error, and blocks until the next yield or completion.
// The bool result reports completion; the error result is an error that
// escaped the body.
func (c *coroutine) send(value uint64, injected error) (Command, bool, error) {
	if c.done {
		return nil, true, nil
	}

	c.resumeCh <- resumePacket{value: value, err: injected}

	y := <-c.yieldCh
	if y.done {
		c.done = true
	}

	return y.cmd, y.done, y.err
}

// abort releases the goroutine of a computation that will never be resumed
// again. Must not be called concurrently with send.
func (c *coroutine) abort() {
	if c.done {
		return
	}

	c.done = true
	close(c.abortCh)
}

// ProcContext is the yield surface available to a process body.
type ProcContext struct {
	co *coroutine

	// Call stack of the current suspension point, captured at every yield.
	// Read by the driver while the body is parked.
	suspendPCs []uintptr
}

// Yield hands one command to the driver and parks until the driver resumes
// the process. The returned value is the command's response: the read value
// for ReadValue, zero for everything else. A non-nil error was injected by
// the driver; the body may handle it and continue, or return it to
// terminate the process with that error.
func (ctx *ProcContext) Yield(cmd Command) (uint64, error) {
	ctx.captureSuspension()

	select {
	case ctx.co.yieldCh <- yieldPacket{cmd: cmd}:
	case <-ctx.co.abortCh:
		runtime.Goexit()
	}

	select {
	case r := <-ctx.co.resumeCh:
		return r.value, r.err
	case <-ctx.co.abortCh:
		runtime.Goexit()
	}

	panic("unreachable")
}

func (ctx *ProcContext) captureSuspension() {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	ctx.suspendPCs = pcs[:n]
}

// srcLoc resolves the source position of the deepest live suspension point:
// the innermost frame outside the yield machinery, so that a body suspended
// inside a helper it delegated to reports the helper's position.
func (ctx *ProcContext) srcLoc() string {
	if len(ctx.suspendPCs) == 0 {
		return ""
	}

	frames := runtime.CallersFrames(ctx.suspendPCs)
	for {
		frame, more := frames.Next()
		if frame.File != "" &&
			!strings.HasSuffix(frame.File, "sim/coroutine.go") &&
			!strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// Get reads the current value of expr.
func (ctx *ProcContext) Get(expr hdl.Expr) (uint64, error) {
	return ctx.Yield(ReadValue{Expr: expr})
}

// GetSignal reads the current value of a signal.
func (ctx *ProcContext) GetSignal(sig *hdl.Signal) (uint64, error) {
	return ctx.Yield(ReadValue{Expr: hdl.Ref{Signal: sig}})
}

// Set assigns the value of rhs to the signal lhs references.
func (ctx *ProcContext) Set(lhs, rhs hdl.Expr) error {
	_, err := ctx.Yield(Assign{LHS: lhs, RHS: rhs})
	return err
}

// SetSignal assigns a literal value to a signal.
func (ctx *ProcContext) SetSignal(sig *hdl.Signal, value uint64) error {
	_, err := ctx.Yield(Assign{
		LHS: hdl.Ref{Signal: sig},
		RHS: hdl.Const{Value: value},
	})
	return err
}

// Tick waits for the active edge of the named clock domain.
func (ctx *ProcContext) Tick(domainName string) error {
	_, err := ctx.Yield(Tick{DomainName: domainName})
	return err
}

// TickDomain waits for the active edge of a concrete clock domain.
func (ctx *ProcContext) TickDomain(d *hdl.ClockDomain) error {
	_, err := ctx.Yield(Tick{Domain: d})
	return err
}

// Settle waits for the next settle point.
func (ctx *ProcContext) Settle() error {
	_, err := ctx.Yield(Settle{})
	return err
}

// Delay waits for the given number of seconds of simulated time.
func (ctx *ProcContext) Delay(seconds float64) error {
	_, err := ctx.Yield(Delay{Interval: &seconds})
	return err
}

// Hold waits indefinitely; only an explicit external wake resumes the
// process.
func (ctx *ProcContext) Hold() error {
	_, err := ctx.Yield(Delay{})
	return err
}

// Passive marks the process as passive.
func (ctx *ProcContext) Passive() error {
	_, err := ctx.Yield(Passive{})
	return err
}

// Active marks the process as active.
func (ctx *ProcContext) Active() error {
	_, err := ctx.Yield(Active{})
	return err
}
