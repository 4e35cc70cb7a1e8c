package sim

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/silica-hdl/silica/hdl"
)

// mapEvaluator is a minimal evaluator over a plain map, wired to the kernel
// the same way the real store is: every change notifies OnCommit.
type mapEvaluator struct {
	values map[*hdl.Signal]uint64
	kernel *SerialKernel
}

func newMapEvaluator(k *SerialKernel) *mapEvaluator {
	return &mapEvaluator{
		values: make(map[*hdl.Signal]uint64),
		kernel: k,
	}
}

func (e *mapEvaluator) Value(expr hdl.Expr) (uint64, error) {
	switch x := expr.(type) {
	case hdl.Const:
		return x.Value, nil
	case hdl.Ref:
		return e.values[x.Signal], nil
	case hdl.Binary:
		a, err := e.Value(x.X)
		if err != nil {
			return 0, err
		}
		b, err := e.Value(x.Y)
		if err != nil {
			return 0, err
		}
		if x.Op != hdl.OpAdd {
			return 0, fmt.Errorf("mapEvaluator only adds")
		}
		return a + b, nil
	default:
		return 0, fmt.Errorf("cannot evaluate %T", expr)
	}
}

func (e *mapEvaluator) Assign(lhs hdl.Expr, v uint64) error {
	ref, ok := lhs.(hdl.Ref)
	if !ok {
		return fmt.Errorf("cannot assign to %T", lhs)
	}

	if e.values[ref.Signal] == v {
		return nil
	}
	e.values[ref.Signal] = v
	e.kernel.OnCommit(ref.Signal, v)

	return nil
}

var _ = Describe("SerialKernel", func() {
	var (
		kernel    *SerialKernel
		evaluator *mapEvaluator

		clk, count *hdl.Signal
		domain     *hdl.ClockDomain

		procs []*Process
	)

	BeforeEach(func() {
		kernel = NewSerialKernel()
		evaluator = newMapEvaluator(kernel)

		clk = hdl.NewSignal("clk", 1)
		count = hdl.NewSignal("count", 8)
		domain = hdl.NewClockDomain("sync", clk)

		procs = nil
	})

	AfterEach(func() {
		for _, p := range procs {
			p.Destroy()
		}
	})

	add := func(p *Process) *Process {
		p.WithEvaluator(evaluator)
		kernel.AddProcess(p)
		procs = append(procs, p)
		return p
	}

	addClock := func(half float64) {
		add(NewProcess("clock", func(ctx *ProcContext) error {
			if err := ctx.Passive(); err != nil {
				return err
			}
			for {
				if err := ctx.Delay(half); err != nil {
					return err
				}
				v, err := ctx.GetSignal(clk)
				if err != nil {
					return err
				}
				if err := ctx.SetSignal(clk, v^1); err != nil {
					return err
				}
			}
		}))
	}

	It("should advance time to the earliest pending wait", func() {
		var woken []VTimeInFs
		add(NewProcess("a", func(ctx *ProcContext) error {
			if err := ctx.Delay(3e-9); err != nil {
				return err
			}
			woken = append(woken, kernel.CurrentTime())
			return nil
		}))
		add(NewProcess("b", func(ctx *ProcContext) error {
			if err := ctx.Delay(1e-9); err != nil {
				return err
			}
			woken = append(woken, kernel.CurrentTime())
			return nil
		}))

		Expect(kernel.Run()).To(Succeed())
		Expect(woken).To(Equal([]VTimeInFs{1_000_000, 3_000_000}))
		Expect(kernel.CurrentTime()).To(Equal(VTimeInFs(3_000_000)))
	})

	It("should wake a ticking process on the clock edge", func() {
		addClock(5e-10)

		cycles := 0
		add(NewProcess("counter", func(ctx *ProcContext) error {
			if err := ctx.Passive(); err != nil {
				return err
			}
			for {
				if err := ctx.TickDomain(domain); err != nil {
					return err
				}
				cycles++
				v, err := ctx.GetSignal(count)
				if err != nil {
					return err
				}
				if err := ctx.SetSignal(count, v+1); err != nil {
					return err
				}
			}
		}))

		add(NewProcess("tb", func(ctx *ProcContext) error {
			return ctx.Delay(10e-9)
		}).AsTestbench())

		Expect(kernel.Run()).To(Succeed())
		// 10 ns of a 1 GHz clock: ten rising edges.
		Expect(cycles).To(Equal(10))
		Expect(evaluator.values[count]).To(Equal(uint64(10)))
	})

	It("should make a testbench write visible within the same instant",
		func() {
			sig := hdl.NewSignal("sig", 1)
			var sawAt VTimeInFs

			watcher := add(NewProcess("watcher", func(ctx *ProcContext) error {
				if err := ctx.Passive(); err != nil {
					return err
				}
				d := hdl.NewClockDomain("d", sig)
				if err := ctx.TickDomain(d); err != nil {
					return err
				}
				sawAt = kernel.CurrentTime()
				return nil
			}))

			add(NewProcess("tb", func(ctx *ProcContext) error {
				if err := ctx.Delay(2e-9); err != nil {
					return err
				}
				return ctx.SetSignal(sig, 1)
			}).AsTestbench())

			Expect(kernel.Run()).To(Succeed())
			Expect(watcher.Terminated()).To(BeTrue())
			Expect(sawAt).To(Equal(VTimeInFs(2_000_000)))
		})

	It("should stop once every process is passive", func() {
		addClock(5e-10)

		Expect(kernel.Run()).To(Succeed())
		Expect(kernel.CurrentTime()).To(Equal(VTimeInFs(0)))
	})

	It("should hold an indefinitely delayed process until woken", func() {
		resumed := false
		holder := add(NewProcess("holder", func(ctx *ProcContext) error {
			if err := ctx.Hold(); err != nil {
				return err
			}
			resumed = true
			return nil
		}))

		add(NewProcess("tb", func(ctx *ProcContext) error {
			return ctx.Delay(1e-9)
		}).AsTestbench())

		Expect(kernel.Run()).To(Succeed())
		Expect(resumed).To(BeFalse())

		kernel.Wake(holder)

		Expect(kernel.Run()).To(Succeed())
		Expect(resumed).To(BeTrue())
	})

	It("should accept a wake from another goroutine during a run", func() {
		resumed := false
		holder := add(NewProcess("holder", func(ctx *ProcContext) error {
			if err := ctx.Hold(); err != nil {
				return err
			}
			resumed = true
			return nil
		}))

		parked := make(chan struct{})
		add(NewProcess("tb", func(ctx *ProcContext) error {
			if err := ctx.Delay(1e-9); err != nil {
				return err
			}
			close(parked)
			for !resumed {
				if err := ctx.Delay(1e-9); err != nil {
					return err
				}
			}
			return nil
		}).AsTestbench())

		woken := make(chan struct{})
		go func() {
			defer close(woken)
			<-parked
			kernel.Wake(holder)
		}()

		Expect(kernel.Run()).To(Succeed())
		<-woken
		Expect(resumed).To(BeTrue())
	})

	It("should stop a bounded run before later waits", func() {
		fired := 0
		add(NewProcess("late", func(ctx *ProcContext) error {
			if err := ctx.Delay(5e-9); err != nil {
				return err
			}
			fired++
			if err := ctx.Delay(5e-9); err != nil {
				return err
			}
			fired++
			return nil
		}))

		Expect(kernel.RunUntil(SecondsToFs(6e-9))).To(Succeed())
		Expect(fired).To(Equal(1))
		Expect(kernel.CurrentTime()).To(Equal(VTimeInFs(5_000_000)))

		Expect(kernel.Run()).To(Succeed())
		Expect(fired).To(Equal(2))
	})

	It("should surface a fatal process error", func() {
		add(NewProcess("bad", func(ctx *ProcContext) error {
			if err := ctx.Tick("nope"); err != nil {
				return err
			}
			return nil
		}))

		err := kernel.Run()

		Expect(err).To(MatchError(ContainSubstring("nonexistent domain")))
	})

	It("should run settle waiters within the same instant", func() {
		sig := hdl.NewSignal("sig", 8)
		var settledAt VTimeInFs
		var seen uint64

		add(NewProcess("comb", func(ctx *ProcContext) error {
			if err := ctx.SetSignal(sig, 7); err != nil {
				return err
			}
			if err := ctx.Settle(); err != nil {
				return err
			}
			settledAt = kernel.CurrentTime()
			v, err := ctx.GetSignal(sig)
			if err != nil {
				return err
			}
			seen = v
			return nil
		}))

		Expect(kernel.Run()).To(Succeed())
		Expect(settledAt).To(Equal(VTimeInFs(0)))
		Expect(seen).To(Equal(uint64(7)))
	})
})
