package simulation

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/silica-hdl/silica/hdl"
	"github.com/silica-hdl/silica/sim"
)

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		output := filepath.Join(GinkgoT().TempDir(), "recording")
		s = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(output).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
	})

	It("should register signals by name", func() {
		sig := s.DefineSignal("clk", 1)

		Expect(s.SignalByName("clk")).To(BeIdenticalTo(sig))
		Expect(s.Signals()).To(HaveLen(1))
	})

	It("should refuse duplicate signal names", func() {
		s.DefineSignal("clk", 1)

		Expect(func() { s.DefineSignal("clk", 1) }).To(Panic())
	})

	It("should refuse duplicate clock domain names", func() {
		clk := s.DefineSignal("clk", 1)
		s.DefineClockDomain(hdl.NewClockDomain("sync", clk))

		Expect(func() {
			s.DefineClockDomain(hdl.NewClockDomain("sync", clk))
		}).To(Panic())
	})

	It("should simulate a clocked counter end to end", func() {
		clk := s.DefineSignal("clk", 1)
		count := s.DefineSignal("count", 8)
		domain := hdl.NewClockDomain("sync", clk)
		s.DefineClockDomain(domain)

		s.AddClock(domain, 1*sim.GHz)

		s.AddProcess("counter", func(ctx *sim.ProcContext) error {
			if err := ctx.Passive(); err != nil {
				return err
			}
			for {
				if err := ctx.Tick("sync"); err != nil {
					return err
				}
				v, err := ctx.GetSignal(count)
				if err != nil {
					return err
				}
				if err := ctx.SetSignal(count, v+1); err != nil {
					return err
				}
			}
		})

		var final uint64
		s.AddTestbench("tb", func(ctx *sim.ProcContext) error {
			for i := 0; i < 10; i++ {
				if err := ctx.Tick("sync"); err != nil {
					return err
				}
			}
			v, err := ctx.GetSignal(count)
			if err != nil {
				return err
			}
			final = v
			return nil
		})

		Expect(s.Run()).To(Succeed())
		Expect(final).To(BeNumerically(">=", uint64(9)))
		Expect(s.Store().SignalValue(count)).To(Equal(uint64(10)))
	})

	It("should record process runs in the trace table", func() {
		s.AddTestbench("tb", func(ctx *sim.ProcContext) error {
			return ctx.Delay(1e-9)
		})

		Expect(s.Run()).To(Succeed())
		s.DataRecorder().Flush()

		Expect(s.DataRecorder().ListTables()).To(ContainElements(
			"trace", "trace_steps"))
	})

	It("should stop a bounded run at the bound", func() {
		s.AddTestbench("tb", func(ctx *sim.ProcContext) error {
			return ctx.Delay(5e-9)
		})

		Expect(s.RunUntil(sim.VTimeInFs(1_000_000))).To(Succeed())
		Expect(s.Kernel().CurrentTime()).To(
			BeNumerically("<=", sim.VTimeInFs(1_000_000)))
	})

	It("should refuse a monitor port when monitoring is off", func() {
		Expect(func() {
			MakeBuilder().WithoutMonitoring().WithMonitorPort(8080).Build()
		}).To(Panic())
	})
})
