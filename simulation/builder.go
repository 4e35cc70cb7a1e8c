package simulation

import (
	"github.com/rs/xid"

	"github.com/silica-hdl/silica/datarecording"
	"github.com/silica-hdl/silica/eval"
	"github.com/silica-hdl/silica/hdl"
	"github.com/silica-hdl/silica/monitoring"
	"github.com/silica-hdl/silica/sim"
	"github.com/silica-hdl/silica/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		signalNameIndex: make(map[string]int),
		domains:         make(map[string]*hdl.ClockDomain),
	}

	s.id = xid.New().String()

	s.kernel = sim.NewSerialKernel()
	s.store = eval.NewStore()
	s.store.OnCommit(s.kernel.OnCommit)

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "silica_sim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.visTracer = tracing.NewDBTracer(s.dataRecorder)
	s.traceHook = tracing.CollectTrace(s.kernel, s.kernel, s.visTracer)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterKernel(s.kernel)
		s.monitor.RegisterSignalReader(s.store)
		s.monitor.StartServer()
	}

	return s
}
