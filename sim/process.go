package sim

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/silica-hdl/silica/hdl"
)

// A Process is one simulated unit of behavior: an exclusively-owned
// resumable computation plus the bookkeeping the driver needs to schedule
// it. Design processes describe synthesizable logic; testbench processes
// describe stimulus whose writes must become visible to other processes
// within the same instant.
type Process struct {
	*HookableBase

	id   string
	name string

	computation    *coroutine
	runnable       bool
	passive        bool
	testbench      bool
	defaultCommand Command

	// Exactly the triggers currently registered with the kernel for this
	// process.
	watched map[*hdl.Signal]struct{}
	domains map[string]*hdl.ClockDomain

	evaluator Evaluator
	kernel    EventKernel
}

// NewProcess creates a process around body. The body does not start
// executing until the first Run. The process must be given an evaluator and
// an event kernel before it first runs.
func NewProcess(name string, body ProcessFunc) *Process {
	return &Process{
		HookableBase: NewHookableBase(),
		id:           xid.New().String(),
		name:         name,
		computation:  newCoroutine(body),
		runnable:     true,
		watched:      make(map[*hdl.Signal]struct{}),
		domains:      make(map[string]*hdl.ClockDomain),
	}
}

// WithEvaluator sets the evaluator the driver reads and writes values
// through.
func (p *Process) WithEvaluator(e Evaluator) *Process {
	p.evaluator = e
	return p
}

// WithKernel sets the event kernel the driver registers waits with.
func (p *Process) WithKernel(k EventKernel) *Process {
	p.kernel = k
	return p
}

// WithDefaultCommand sets the command substituted when the body yields nil.
func (p *Process) WithDefaultCommand(cmd Command) *Process {
	p.defaultCommand = cmd
	return p
}

// WithDomain binds a clock domain to the name processes use to refer to it.
func (p *Process) WithDomain(name string, d *hdl.ClockDomain) *Process {
	p.domains[name] = d
	return p
}

// WithDomains replaces the process's domain bindings with the given map.
// The map is shared, not copied.
func (p *Process) WithDomains(domains map[string]*hdl.ClockDomain) *Process {
	p.domains = domains
	return p
}

// AsTestbench marks the process as a testbench. The mode is fixed at
// creation time and changes which commands are legal and how assignments
// are timed.
func (p *Process) AsTestbench() *Process {
	p.testbench = true
	return p
}

// ID returns the unique ID of the process.
func (p *Process) ID() string {
	return p.id
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// Passive reports whether the process, by itself, keeps the simulation from
// reaching quiescence.
func (p *Process) Passive() bool {
	return p.passive
}

// Runnable reports whether the kernel should schedule this process at all.
// A process can be runnable yet currently suspended on a trigger.
func (p *Process) Runnable() bool {
	return p.runnable
}

// SetRunnable enables or disables kernel scheduling for the process.
func (p *Process) SetRunnable(runnable bool) {
	p.runnable = runnable
}

// Testbench reports whether the process runs in testbench mode.
func (p *Process) Testbench() bool {
	return p.testbench
}

// Terminated reports whether the computation has completed. A process never
// outlives its single computation; there is no restart.
func (p *Process) Terminated() bool {
	return p.computation == nil
}

// WatchedSignals returns the signals the process currently has live
// triggers registered against.
func (p *Process) WatchedSignals() []*hdl.Signal {
	sigs := make([]*hdl.Signal, 0, len(p.watched))
	for sig := range p.watched {
		sigs = append(sigs, sig)
	}
	return sigs
}

// SrcLoc reports a human-readable source position for the deepest live
// suspension point of the process body. Used in error messages only.
func (p *Process) SrcLoc() string {
	if p.computation == nil {
		return "<terminated>"
	}

	loc := p.computation.ctx.srcLoc()
	if loc == "" {
		return "<not started>"
	}
	return loc
}

// Destroy releases the process's computation without resuming it again.
// Intended for tearing down a simulation with parked processes.
func (p *Process) Destroy() {
	if p.computation == nil {
		return
	}
	p.computation.abort()
	p.terminate()
}

func (p *Process) terminate() {
	p.passive = true
	p.computation = nil
}

func (p *Process) addTrigger(sig *hdl.Signal, expect uint64) {
	p.kernel.RegisterTrigger(p, sig, expect)
	p.watched[sig] = struct{}{}
}

func (p *Process) clearTriggers() {
	for sig := range p.watched {
		p.kernel.UnregisterTrigger(p, sig)
		delete(p.watched, sig)
	}
}

// Run advances the process: it resumes the suspended computation and
// interprets the commands it yields in a tight loop until the process
// suspends, terminates, or requires a same-instant rerun. The returned bool
// asks the kernel to schedule the process again within the same instant (a
// testbench write that must become visible before the process continues).
// The returned error is fatal for the process: an error escaped the
// computation after it was given a chance to handle it.
//
// Errors raised while interpreting a command, including evaluator failures,
// are not returned; they are injected into the computation on the next
// iteration so the body's own error handling can observe and recover from
// them.
func (p *Process) Run() (bool, error) {
	if p.computation == nil {
		return false, nil
	}

	// The process decides its new wait set from scratch; it must never hold
	// stale triggers across a resume.
	p.clearTriggers()

	var response uint64
	var injected error
	for {
		cmd, done, err := p.computation.send(response, injected)
		if done {
			p.terminate()
			if err != nil {
				return false, fmt.Errorf("process %s: %w", p.name, err)
			}
			return false, nil
		}

		response = 0
		injected = nil

		if cmd == nil {
			cmd = p.defaultCommand
		}

		p.InvokeHook(HookCtx{Domain: p, Pos: HookPosCommand, Item: cmd})

		switch c := cmd.(type) {
		case ReadValue:
			v, err := p.evaluator.Value(c.Expr)
			if err != nil {
				injected = err
				break
			}
			response = v

		case Assign:
			v, err := p.evaluator.Value(c.RHS)
			if err != nil {
				injected = err
				break
			}
			if err := p.evaluator.Assign(c.LHS, v); err != nil {
				injected = err
				break
			}
			if p.testbench {
				// The write must become visible to other processes before
				// this one continues; the kernel reruns us within the same
				// instant.
				return true, nil
			}

		case Tick:
			domain := c.Domain
			if domain == nil {
				domain = p.domains[c.DomainName]
				if domain == nil {
					injected = fmt.Errorf(
						"command %v refers to nonexistent domain %q "+
							"in process %s", c, c.DomainName, p.SrcLoc())
					break
				}
			}

			expect := uint64(1)
			if domain.ClkEdge == hdl.EdgeNeg {
				expect = 0
			}
			p.addTrigger(domain.Clk, expect)
			if domain.Rst != nil && domain.AsyncReset {
				p.addTrigger(domain.Rst, 1)
			}
			return false, nil

		case Settle:
			if p.testbench {
				injected = fmt.Errorf(
					"command %v is not allowed in testbenches (process %s)",
					c, p.SrcLoc())
				break
			}
			p.kernel.RequestWait(p, nil)
			return false, nil

		case Delay:
			if c.Interval == nil {
				if p.testbench {
					injected = fmt.Errorf(
						"command %v is not allowed in testbenches "+
							"(process %s)", c, p.SrcLoc())
					break
				}
				hold := HoldForever
				p.kernel.RequestWait(p, &hold)
				return false, nil
			}
			fs := SecondsToFs(*c.Interval)
			p.kernel.RequestWait(p, &fs)
			return false, nil

		case Passive:
			p.passive = true

		case Active:
			p.passive = false

		case nil:
			if p.testbench {
				injected = fmt.Errorf(
					"empty command is not allowed in testbenches "+
						"(process %s)", p.SrcLoc())
				break
			}
			injected = fmt.Errorf(
				"process %s yielded no command and has no default command; "+
					"did you mean to wait for a clock tick?", p.SrcLoc())

		default:
			injected = fmt.Errorf(
				"unsupported command %v from process %s", cmd, p.SrcLoc())
		}
	}
}
