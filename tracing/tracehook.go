package tracing

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/silica-hdl/silica/sim"
)

// A TraceHook bridges the simulator's hook positions to a Tracer. Attach it
// to the kernel for run spans and to each process whose commands should be
// recorded as steps.
type TraceHook struct {
	tracer Tracer
	tt     sim.TimeTeller

	open map[*sim.Process]*Task
}

// CollectTrace attaches a tracer to kernel and returns the hook, so that it
// can additionally be attached to processes with Attach.
func CollectTrace(
	kernel sim.Hookable,
	tt sim.TimeTeller,
	tracer Tracer,
) *TraceHook {
	h := &TraceHook{
		tracer: tracer,
		tt:     tt,
		open:   make(map[*sim.Process]*Task),
	}
	kernel.AcceptHook(h)

	return h
}

// Attach also records the commands of p as steps of its run tasks.
func (h *TraceHook) Attach(p *sim.Process) {
	p.AcceptHook(h)
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *TraceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosBeforeRun:
		p := ctx.Item.(*sim.Process)
		task := &Task{
			ID:        xid.New().String(),
			ProcessID: p.ID(),
			Where:     p.Name(),
			Kind:      "run",
			StartTime: h.tt.CurrentTime().Seconds(),
		}
		h.open[p] = task
		h.tracer.StartTask(*task)

	case sim.HookPosCommand:
		p, ok := ctx.Domain.(*sim.Process)
		if !ok {
			return
		}
		task := h.open[p]
		if task == nil {
			return
		}
		task.Steps = append(task.Steps, TaskStep{
			Time: h.tt.CurrentTime().Seconds(),
			What: fmt.Sprintf("%v", ctx.Item),
		})
		h.tracer.StepTask(*task)

	case sim.HookPosAfterRun:
		p := ctx.Item.(*sim.Process)
		task := h.open[p]
		if task == nil {
			return
		}
		task.EndTime = h.tt.CurrentTime().Seconds()
		delete(h.open, p)
		h.tracer.EndTask(*task)
	}
}
