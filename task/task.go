// Package task drives the lateral planner's per-frame loop: one
// Update, one Publish per vision frame, no internal threads and no
// suspension points beyond the bus call itself (spec.md §5). Unlike
// the teacher's Context, which fans each step out across several
// goroutine-driven managers, there is exactly one component here and
// exactly one step per frame.
package task

import (
	"sync/atomic"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/clock"
	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/nakashivu1/openpilot-lateral-planner/planner"
	"github.com/nakashivu1/openpilot-lateral-planner/utils/config"
)

// Bus is the message-bus contract the loop needs: block for the next
// frame's inputs, then send the outgoing plan. The transport itself
// (shared memory segment, socket, anything) is an external
// collaborator and out of scope here (spec.md §1).
type Bus interface {
	// Recv blocks until the next frame is available. ok is false when
	// the bus has been closed and the loop should stop.
	Recv() (in planner.FrameInputs, ok bool)
	// Send publishes the plan for this frame, and the debug frame when
	// non-nil. A dropped send is not retried; the next frame supersedes
	// (spec.md §5).
	Send(plan busmsg.LateralPlan, debug *busmsg.LiveMpc)
}

// Context bundles one planner run: the frame clock, the planner
// itself, and the bus it talks to.
type Context struct {
	job    string
	closed atomic.Bool

	clock   *clock.FrameClock
	planner *planner.Planner
	bus     Bus
}

// NewContext wires a fresh planner around the given solver and
// parameter source (spec.md §9, both injected rather than constructed
// internally).
func NewContext(job string, bus Bus, solver mpcsolver.Solver, src config.Source) *Context {
	return &Context{
		job:     job,
		clock:   clock.New(),
		planner: planner.New(solver, src),
		bus:     bus,
	}
}

func (ctx *Context) Clock() *clock.FrameClock { return ctx.clock }

// Run processes frames until the bus closes or Close is called. Each
// frame is handled atomically: Update then Publish, with no
// interleaving of another frame's state (spec.md §5).
func (ctx *Context) Run() {
	for !ctx.closed.Load() {
		in, ok := ctx.bus.Recv()
		if !ok {
			return
		}
		ctx.clock.Advance()

		ctx.planner.Update(in)
		plan := ctx.planner.Publish(in)

		if debug, ok := ctx.planner.PublishDebug(); ok {
			ctx.bus.Send(plan, &debug)
		} else {
			ctx.bus.Send(plan, nil)
		}

		if ctx.clock.Step%100 == 0 {
			log.Infof("job %s: step %d (%s)", ctx.job, ctx.clock.Step, ctx.clock)
		}
	}
}

// Close stops Run after its current frame completes.
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
