// Package simulation assembles the kernel, the evaluator, the recorder, and
// the monitor into a ready-to-use simulation.
package simulation

import (
	"github.com/silica-hdl/silica/datarecording"
	"github.com/silica-hdl/silica/eval"
	"github.com/silica-hdl/silica/hdl"
	"github.com/silica-hdl/silica/monitoring"
	"github.com/silica-hdl/silica/sim"
	"github.com/silica-hdl/silica/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	kernel *sim.SerialKernel
	store  *eval.Store

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer
	traceHook    *tracing.TraceHook

	signals         []*hdl.Signal
	signalNameIndex map[string]int
	domains         map[string]*hdl.ClockDomain
	processes       []*sim.Process
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Kernel returns the event kernel used in the simulation.
func (s *Simulation) Kernel() *sim.SerialKernel {
	return s.kernel
}

// Store returns the signal store that evaluates expressions and holds the
// committed signal values.
func (s *Simulation) Store() *eval.Store {
	return s.store
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// VisTracer returns the tracer that records process runs in the database.
func (s *Simulation) VisTracer() *tracing.DBTracer {
	return s.visTracer
}

// DefineSignal creates a signal, registers it, and returns it.
func (s *Simulation) DefineSignal(name string, width int) *hdl.Signal {
	sig := hdl.NewSignal(name, width)
	s.RegisterSignal(sig)

	return sig
}

// RegisterSignal registers an externally created signal with the simulation.
func (s *Simulation) RegisterSignal(sig *hdl.Signal) {
	if _, ok := s.signalNameIndex[sig.Name()]; ok {
		panic("signal " + sig.Name() + " already registered")
	}

	s.signals = append(s.signals, sig)
	s.signalNameIndex[sig.Name()] = len(s.signals) - 1

	if s.monitor != nil {
		s.monitor.RegisterSignal(sig)
	}
}

// SignalByName returns the registered signal with the given name.
func (s *Simulation) SignalByName(name string) *hdl.Signal {
	return s.signals[s.signalNameIndex[name]]
}

// Signals returns all registered signals.
func (s *Simulation) Signals() []*hdl.Signal {
	return s.signals
}

// DefineClockDomain registers a clock domain under its name. Processes added
// afterwards can tick the domain by name.
func (s *Simulation) DefineClockDomain(d *hdl.ClockDomain) {
	if _, ok := s.domains[d.Name()]; ok {
		panic("clock domain " + d.Name() + " already registered")
	}

	s.domains[d.Name()] = d
}

// AddProcess registers body as a design process and returns it.
func (s *Simulation) AddProcess(name string, body sim.ProcessFunc) *sim.Process {
	p := sim.NewProcess(name, body).
		WithEvaluator(s.store).
		WithDomains(s.domains)

	s.register(p)

	return p
}

// AddTestbench registers body as a testbench process and returns it.
func (s *Simulation) AddTestbench(name string, body sim.ProcessFunc) *sim.Process {
	p := sim.NewProcess(name, body).
		WithEvaluator(s.store).
		WithDomains(s.domains).
		AsTestbench()

	s.register(p)

	return p
}

// AddClock adds a passive process that toggles the clock of d forever with
// the given frequency. The simulation keeps running only as long as some
// other process is active.
func (s *Simulation) AddClock(d *hdl.ClockDomain, freq sim.Freq) *sim.Process {
	clk := d.Clk
	half := freq.Period().Seconds() / 2

	return s.AddProcess(d.Name()+".clk", func(ctx *sim.ProcContext) error {
		if err := ctx.Passive(); err != nil {
			return err
		}

		value := uint64(0)
		for {
			if err := ctx.Delay(half); err != nil {
				return err
			}

			value ^= 1
			if err := ctx.SetSignal(clk, value); err != nil {
				return err
			}
		}
	})
}

func (s *Simulation) register(p *sim.Process) {
	s.processes = append(s.processes, p)
	s.kernel.AddProcess(p)

	if s.monitor != nil {
		s.monitor.RegisterProcess(p)
	}

	if s.traceHook != nil {
		s.traceHook.Attach(p)
	}
}

// Processes returns all registered processes.
func (s *Simulation) Processes() []*sim.Process {
	return s.processes
}

// Run runs the simulation until no active process can make progress.
func (s *Simulation) Run() error {
	return s.kernel.Run()
}

// RunUntil runs the simulation up to and including time t.
func (s *Simulation) RunUntil(t sim.VTimeInFs) error {
	return s.kernel.RunUntil(t)
}

// Terminate terminates the simulation. It releases the goroutines of all
// processes and flushes the recorded data.
func (s *Simulation) Terminate() {
	for _, p := range s.processes {
		p.Destroy()
	}

	s.dataRecorder.Flush()
}
