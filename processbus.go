package main

import (
	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/planner"
)

// processBus is the standalone-binary stand-in for the real vision/plan
// transport, which spec.md §1 places out of scope. It has no frames to
// offer, so Run returns immediately; a real deployment swaps this for a
// task.Bus backed by its own shared-memory segment or socket and wires
// it in at the same call site in main().
type processBus struct{}

func newProcessBus() *processBus { return &processBus{} }

func (b *processBus) Recv() (planner.FrameInputs, bool) { return planner.FrameInputs{}, false }

func (b *processBus) Send(plan busmsg.LateralPlan, debug *busmsg.LiveMpc) {}
