package sim

import (
	"fmt"
	"log"
	"sync"

	"github.com/silica-hdl/silica/hdl"
)

// A SerialKernel is an event kernel that drives every process on a single
// goroutine. Within one instant it runs processes in delta batches until
// the instant quiesces; between instants it advances the femtosecond
// timeline to the earliest pending timed wait.
type SerialKernel struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTimeInFs

	processes []*Process
	triggers  map[*hdl.Signal]map[*Process]uint64

	// scheduleLock guards current, pending, and parked. Wake and RequestWait
	// may be called from other goroutines, such as the monitor's handlers.
	scheduleLock sync.Mutex
	// Processes to resume in the next delta batch of the current instant.
	current []*Process
	pending map[*Process]struct{}

	queue  *waitQueue
	parked map[*Process]struct{}

	pauseLock     sync.Mutex
	singleRunLock sync.Mutex
}

// NewSerialKernel creates a SerialKernel.
func NewSerialKernel() *SerialKernel {
	return &SerialKernel{
		triggers: make(map[*hdl.Signal]map[*Process]uint64),
		pending:  make(map[*Process]struct{}),
		queue:    newWaitQueue(),
		parked:   make(map[*Process]struct{}),
	}
}

// AddProcess registers a process with the kernel and schedules it for the
// first instant of the run.
func (k *SerialKernel) AddProcess(p *Process) {
	p.WithKernel(k)
	k.processes = append(k.processes, p)
	k.schedule(p)
}

// Processes returns the registered processes.
func (k *SerialKernel) Processes() []*Process {
	return k.processes
}

// CurrentTime returns the current simulated time.
func (k *SerialKernel) CurrentTime() VTimeInFs {
	k.timeLock.RLock()
	t := k.now
	k.timeLock.RUnlock()
	return t
}

func (k *SerialKernel) writeNow(t VTimeInFs) {
	k.timeLock.Lock()
	k.now = t
	k.timeLock.Unlock()
}

// RegisterTrigger wakes proc within the instant at which sig changes to the
// value expect.
func (k *SerialKernel) RegisterTrigger(
	proc *Process,
	sig *hdl.Signal,
	expect uint64,
) {
	procs, ok := k.triggers[sig]
	if !ok {
		procs = make(map[*Process]uint64)
		k.triggers[sig] = procs
	}
	procs[proc] = expect
}

// UnregisterTrigger removes the trigger on sig for proc.
func (k *SerialKernel) UnregisterTrigger(proc *Process, sig *hdl.Signal) {
	procs, ok := k.triggers[sig]
	if !ok {
		return
	}

	delete(procs, proc)
	if len(procs) == 0 {
		delete(k.triggers, sig)
	}
}

// RequestWait parks proc until the next settle point (nil interval), for a
// number of femtoseconds (non-negative interval), or indefinitely (negative
// interval).
func (k *SerialKernel) RequestWait(proc *Process, interval *VTimeInFs) {
	switch {
	case interval == nil:
		k.schedule(proc)
	case *interval < 0:
		k.scheduleLock.Lock()
		k.parked[proc] = struct{}{}
		k.scheduleLock.Unlock()
	default:
		k.queue.Push(timedWait{at: k.CurrentTime() + *interval, proc: proc})
	}
}

// OnCommit is the evaluator commit observer. It wakes every process with a
// matching trigger within the same instant, so writes propagate through
// delta cycles.
func (k *SerialKernel) OnCommit(sig *hdl.Signal, val uint64) {
	for proc, expect := range k.triggers[sig] {
		if expect == val {
			k.schedule(proc)
		}
	}
}

// Wake resumes a process parked on an indefinite wait at the current time.
// Waking a process that is not parked is a no-op.
func (k *SerialKernel) Wake(proc *Process) {
	k.scheduleLock.Lock()
	defer k.scheduleLock.Unlock()

	if _, ok := k.parked[proc]; !ok {
		return
	}

	delete(k.parked, proc)
	k.scheduleLocked(proc)
}

func (k *SerialKernel) schedule(p *Process) {
	k.scheduleLock.Lock()
	defer k.scheduleLock.Unlock()

	k.scheduleLocked(p)
}

func (k *SerialKernel) scheduleLocked(p *Process) {
	if p.Terminated() || !p.Runnable() {
		return
	}
	if _, ok := k.pending[p]; ok {
		return
	}

	k.pending[p] = struct{}{}
	k.current = append(k.current, p)
}

// Run drives the simulation until no process can make further progress or
// every remaining process is passive. A fatal process error aborts the run
// and is returned.
func (k *SerialKernel) Run() error {
	return k.run(false, 0)
}

// RunUntil drives the simulation up to and including the instant t. Waits
// scheduled after t stay queued.
func (k *SerialKernel) RunUntil(t VTimeInFs) error {
	return k.run(true, t)
}

func (k *SerialKernel) run(bounded bool, until VTimeInFs) error {
	k.singleRunLock.Lock()
	defer k.singleRunLock.Unlock()

	for {
		if err := k.drainInstant(); err != nil {
			return err
		}

		if !k.anyActive() {
			return nil
		}

		if k.queue.Len() == 0 {
			return nil
		}

		next := k.queue.Peek().at
		if bounded && next > until {
			return nil
		}
		if next < k.CurrentTime() {
			log.Panicf("cannot wake a process in the past, at %d, now %d",
				next, k.CurrentTime())
		}

		k.writeNow(next)
		for k.queue.Len() > 0 && k.queue.Peek().at == next {
			k.schedule(k.queue.Pop().proc)
		}
	}
}

// drainInstant runs delta batches until the current instant quiesces.
func (k *SerialKernel) drainInstant() error {
	for {
		k.scheduleLock.Lock()
		batch := k.current
		k.current = nil
		for _, p := range batch {
			delete(k.pending, p)
		}
		k.scheduleLock.Unlock()

		if len(batch) == 0 {
			return nil
		}

		k.pauseLock.Lock()
		for _, p := range batch {
			if err := k.runProcess(p); err != nil {
				k.pauseLock.Unlock()
				return err
			}
		}
		k.pauseLock.Unlock()
	}
}

func (k *SerialKernel) runProcess(p *Process) error {
	ctx := HookCtx{Domain: k, Pos: HookPosBeforeRun, Item: p}
	k.InvokeHook(ctx)

	rerun, err := p.Run()
	if err != nil {
		return fmt.Errorf("event kernel: %w", err)
	}

	ctx.Pos = HookPosAfterRun
	k.InvokeHook(ctx)

	if rerun {
		k.schedule(p)
	}

	return nil
}

// anyActive reports whether any process still prevents quiescence.
func (k *SerialKernel) anyActive() bool {
	for _, p := range k.processes {
		if !p.Passive() && p.Runnable() {
			return true
		}
	}
	return false
}

// Pause blocks the kernel at the next delta batch boundary until Continue
// is called.
func (k *SerialKernel) Pause() {
	k.pauseLock.Lock()
}

// Continue resumes a paused kernel.
func (k *SerialKernel) Continue() {
	k.pauseLock.Unlock()
}
