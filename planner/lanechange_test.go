package planner_test

import (
	"testing"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/planner"
	"github.com/stretchr/testify/assert"
)

const testDT = 0.05

func baseInputs() planner.LaneChangeInputs {
	return planner.LaneChangeInputs{
		Active:     true,
		VEgo:       20,
		SteerMaxV:  1.0,
		AutoDelayS: 0.2,
		MinSpeedMS: 8.33,
	}
}

func TestLaneChangeIdleStaysOff(t *testing.T) {
	var c planner.LaneChangeContext
	c.Step(planner.LaneChangeInputs{Active: false, VEgo: 0, MinSpeedMS: 8.33}, testDT)

	assert.Equal(t, busmsg.LaneChangeStateOff, c.State)
	assert.Equal(t, busmsg.DesireNone, c.Desire())
	assert.Equal(t, 0.0, c.TimerS)
}

func TestBlinkerAboveThresholdTriggersPreLaneChange(t *testing.T) {
	var c planner.LaneChangeContext
	in := baseInputs()
	in.LeftBlinker = true
	c.Step(in, testDT)

	assert.Equal(t, busmsg.LaneChangeStatePreLaneChange, c.State)
	assert.Equal(t, busmsg.LaneChangeDirectionLeft, c.Direction)
	assert.InDelta(t, 1.0, c.LlProb, 1e-9)
	assert.InDelta(t, testDT, c.WaitTimerS, 1e-9)
}

func TestAutoDelayElapsesStartsFadingLlProb(t *testing.T) {
	var c planner.LaneChangeContext
	in := baseInputs()
	in.LeftBlinker = true
	c.Step(in, testDT) // -> preLaneChange

	for i := 0; i < 4; i++ {
		c.Step(in, testDT)
	}
	assert.Equal(t, busmsg.LaneChangeStateStarting, c.State)

	in.VEgo = 16
	for i := 0; i < 10; i++ {
		c.Step(in, testDT)
	}
	// rate(16) = 0.17 exactly, 10 frames at dt=0.05 => 0.5s of fade.
	assert.InDelta(t, 1-0.17*10*testDT, c.LlProb, 1e-9)
}

func TestBlindspotBlocksTransitionOutOfPreLaneChangeIndefinitely(t *testing.T) {
	// TimerS resets to 0 every frame while parked in preLaneChange, so
	// the 10s global-abort timer never accrues here; only a state that
	// has actually left preLaneChange is bounded by it (spec.md §4.2,
	// scenario 4).
	var c planner.LaneChangeContext
	in := baseInputs()
	in.LeftBlinker = true
	in.LeftBlindspot = true
	for i := 0; i < 500; i++ {
		c.Step(in, testDT)
	}
	assert.Equal(t, busmsg.LaneChangeStatePreLaneChange, c.State)
	assert.Equal(t, 0.0, c.TimerS)
}

func TestGlobalAbortForcesOffWhenInactive(t *testing.T) {
	var c planner.LaneChangeContext
	in := baseInputs()
	in.LeftBlinker = true
	c.Step(in, testDT)
	require := assert.New(t)
	require.Equal(busmsg.LaneChangeStatePreLaneChange, c.State)

	in.Active = false
	c.Step(in, testDT)
	require.Equal(busmsg.LaneChangeStateOff, c.State)
	require.Equal(busmsg.LaneChangeDirectionNone, c.Direction)
}

func TestDesireTableMatchesStateDirectionPairs(t *testing.T) {
	cases := []struct {
		state busmsg.LaneChangeState
		dir   busmsg.LaneChangeDirection
		want  busmsg.Desire
	}{
		{busmsg.LaneChangeStateOff, busmsg.LaneChangeDirectionLeft, busmsg.DesireNone},
		{busmsg.LaneChangeStatePreLaneChange, busmsg.LaneChangeDirectionRight, busmsg.DesireNone},
		{busmsg.LaneChangeStateStarting, busmsg.LaneChangeDirectionLeft, busmsg.DesireLaneChangeLeft},
		{busmsg.LaneChangeStateStarting, busmsg.LaneChangeDirectionRight, busmsg.DesireLaneChangeRight},
		{busmsg.LaneChangeStateFinishing, busmsg.LaneChangeDirectionLeft, busmsg.DesireLaneChangeLeft},
		{busmsg.LaneChangeStateFinishing, busmsg.LaneChangeDirectionNone, busmsg.DesireNone},
	}
	for _, c := range cases {
		lc := planner.LaneChangeContext{State: c.state, Direction: c.dir}
		assert.Equal(t, c.want, lc.Desire())
	}
}
