package task_test

import (
	"testing"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/nakashivu1/openpilot-lateral-planner/planner"
	"github.com/nakashivu1/openpilot-lateral-planner/task"
	"github.com/nakashivu1/openpilot-lateral-planner/utils/config"
	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	frames []planner.FrameInputs
	sent   []busmsg.LateralPlan
}

func (b *fakeBus) Recv() (planner.FrameInputs, bool) {
	if len(b.frames) == 0 {
		return planner.FrameInputs{}, false
	}
	in := b.frames[0]
	b.frames = b.frames[1:]
	return in, true
}

func (b *fakeBus) Send(plan busmsg.LateralPlan, debug *busmsg.LiveMpc) {
	b.sent = append(b.sent, plan)
}

func TestRunProcessesEveryFrameThenStops(t *testing.T) {
	frame := planner.FrameInputs{
		CarState:      busmsg.CarState{Valid: true, Alive: true},
		ControlsState: busmsg.ControlsState{Valid: true, Alive: true},
		Model:         busmsg.ModelV2{Valid: true, Alive: true},
		CP:            busmsg.CarParams{SteerMaxV: [1]float64{1.0}},
	}
	bus := &fakeBus{frames: []planner.FrameInputs{frame, frame, frame}}

	src := config.NewFileSource("", config.Control{})
	ctx := task.NewContext("test", bus, mpcsolver.New(), src)
	ctx.Run()

	assert.Len(t, bus.sent, 3)
	assert.Equal(t, int64(3), ctx.Clock().Step)
}

func TestCloseStopsRunBeforeExhaustingBus(t *testing.T) {
	frame := planner.FrameInputs{
		CarState:      busmsg.CarState{Valid: true, Alive: true},
		ControlsState: busmsg.ControlsState{Valid: true, Alive: true},
		Model:         busmsg.ModelV2{Valid: true, Alive: true},
		CP:            busmsg.CarParams{SteerMaxV: [1]float64{1.0}},
	}
	bus := &fakeBus{frames: []planner.FrameInputs{frame}}

	src := config.NewFileSource("", config.Control{})
	ctx := task.NewContext("test", bus, mpcsolver.New(), src)
	ctx.Close()
	ctx.Run()

	assert.Empty(t, bus.sent)
}
