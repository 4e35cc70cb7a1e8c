package tracing

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/silica-hdl/silica/datarecording"
	"github.com/silica-hdl/silica/eval"
	"github.com/silica-hdl/silica/hdl"
	"github.com/silica-hdl/silica/sim"
)

// recordingTracer keeps every tracer call in memory for inspection.
type recordingTracer struct {
	started []Task
	stepped []Task
	ended   []Task
}

func (t *recordingTracer) StartTask(task Task) {
	t.started = append(t.started, task)
}

func (t *recordingTracer) StepTask(task Task) {
	t.stepped = append(t.stepped, task)
}

func (t *recordingTracer) EndTask(task Task) {
	t.ended = append(t.ended, task)
}

var _ = Describe("TraceHook", func() {
	var (
		kernel *sim.SerialKernel
		store  *eval.Store
		tracer *recordingTracer
		hook   *TraceHook
	)

	BeforeEach(func() {
		kernel = sim.NewSerialKernel()
		store = eval.NewStore()
		store.OnCommit(kernel.OnCommit)
		tracer = &recordingTracer{}
		hook = CollectTrace(kernel, kernel, tracer)
	})

	It("should record one task per process run", func() {
		sig := hdl.NewSignal("sig", 8)

		proc := sim.NewProcess("tb", func(ctx *sim.ProcContext) error {
			if err := ctx.SetSignal(sig, 3); err != nil {
				return err
			}
			if err := ctx.Delay(1e-9); err != nil {
				return err
			}
			return ctx.SetSignal(sig, 5)
		}).WithEvaluator(store).AsTestbench()
		hook.Attach(proc)
		kernel.AddProcess(proc)

		err := kernel.Run()
		Expect(err).To(BeNil())

		Expect(tracer.ended).NotTo(BeEmpty())
		for _, task := range tracer.ended {
			Expect(task.ProcessID).To(Equal(proc.ID()))
			Expect(task.Where).To(Equal("tb"))
			Expect(task.Kind).To(Equal("run"))
			Expect(task.EndTime).To(BeNumerically(">=", task.StartTime))
		}
		Expect(len(tracer.started)).To(Equal(len(tracer.ended)))
	})

	It("should record commands as steps of the run task", func() {
		sig := hdl.NewSignal("sig", 8)

		proc := sim.NewProcess("tb", func(ctx *sim.ProcContext) error {
			if err := ctx.SetSignal(sig, 1); err != nil {
				return err
			}
			_, err := ctx.GetSignal(sig)
			return err
		}).WithEvaluator(store).AsTestbench()
		hook.Attach(proc)
		kernel.AddProcess(proc)

		err := kernel.Run()
		Expect(err).To(BeNil())

		steps := 0
		for _, task := range tracer.ended {
			steps += len(task.Steps)
		}
		Expect(steps).To(Equal(2))
	})

	It("should not record steps of processes that are not attached", func() {
		sig := hdl.NewSignal("sig", 8)

		proc := sim.NewProcess("tb", func(ctx *sim.ProcContext) error {
			return ctx.SetSignal(sig, 1)
		}).WithEvaluator(store).AsTestbench()
		kernel.AddProcess(proc)

		err := kernel.Run()
		Expect(err).To(BeNil())

		for _, task := range tracer.ended {
			Expect(task.Steps).To(BeEmpty())
		}
	})
})

var _ = Describe("CSVTraceWriter", func() {
	It("should write completed tasks on flush", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "trace")

		writer := NewCSVTraceWriter(path)
		writer.Init()

		writer.EndTask(Task{
			ID:        "t1",
			ProcessID: "p1",
			Where:     "clk",
			Kind:      "run",
			StartTime: 0,
			EndTime:   1e-9,
			Steps:     []TaskStep{{Time: 0, What: "settle"}},
		})
		writer.Flush()

		data, err := os.ReadFile(path + ".csv")
		Expect(err).To(BeNil())
		Expect(string(data)).To(ContainSubstring("ID, ProcessID"))
		Expect(string(data)).To(ContainSubstring("t1, p1, clk, run"))
	})

	It("should refuse to overwrite an existing file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "trace")
		Expect(os.WriteFile(path+".csv", []byte("x"), 0644)).To(Succeed())

		writer := NewCSVTraceWriter(path)
		Expect(func() { writer.Init() }).To(Panic())
	})
})

// countingRecorder stands in for a real database when testing the DBTracer.
type countingRecorder struct {
	tables  map[string]int
	flushed bool
}

func (r *countingRecorder) CreateTable(name string, _ any) {
	if r.tables == nil {
		r.tables = make(map[string]int)
	}
	r.tables[name] = 0
}

func (r *countingRecorder) InsertData(name string, _ any) {
	r.tables[name]++
}

func (r *countingRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	return names
}

func (r *countingRecorder) Flush() {
	r.flushed = true
}

var _ = Describe("DBTracer", func() {
	It("should create its tables in a real recording database", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "recording")

		recorder := datarecording.New(path)
		tracer := NewDBTracer(recorder)

		tracer.EndTask(Task{
			ID:        "t1",
			ProcessID: "p1",
			Where:     "tb",
			Kind:      "run",
			EndTime:   1e-9,
			Steps:     []TaskStep{{Time: 0, What: "settle"}},
		})
		recorder.Flush()

		reader := datarecording.NewReader(path + ".sqlite3")
		defer func() {
			Expect(reader.Close()).To(Succeed())
		}()

		rows, err := reader.Dump(context.Background(), TaskTable, 0)
		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0]["Location"]).To(BeEquivalentTo("tb"))

		steps, err := reader.Dump(context.Background(), StepTable, 0)
		Expect(err).To(BeNil())
		Expect(steps).To(HaveLen(1))
	})

	It("should store a task row and one row per step", func() {
		recorder := &countingRecorder{}
		tracer := NewDBTracer(recorder)

		tracer.EndTask(Task{
			ID:   "t1",
			Kind: "run",
			Steps: []TaskStep{
				{Time: 0, What: "assign"},
				{Time: 0, What: "tick"},
			},
		})

		Expect(recorder.tables[TaskTable]).To(Equal(1))
		Expect(recorder.tables[StepTable]).To(Equal(2))
	})
})
