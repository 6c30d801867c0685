package planner

import (
	"math"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
)

// Global-abort and per-state thresholds (spec.md §4.2).
const (
	laneChangeTimerMaxS  = 10.0 // force off past this regardless of phase
	postAbortGraceS      = 1.0  // saturation abort only applies once past this
	steerMaxVMargin      = 0.15
	finishingProbMinSum  = 0.02
	finishingLlProbFloor = 0.01
	finishingDoneAt      = 0.99
)

// fade rate breakpoints, piecewise-linear in v_ego (spec.md §4.2).
var (
	fadeSpeeds = []float64{8.3, 16, 22, 30}
	fadeRates  = []float64{0.1, 0.17, 0.7, 1.2}
)

// LaneChangeInputs is C2's per-step input set.
type LaneChangeInputs struct {
	Active bool
	VEgo   float64

	LeftBlinker, RightBlinker bool
	SteeringPressed           bool
	SteeringTorque            float64
	LeftBlindspot             bool
	RightBlindspot            bool

	OutputScale float64
	SteerMaxV   float64

	LLaneChangeProb, RLaneChangeProb float64

	AutoDelayS  float64
	MinSpeedMS  float64
}

// LaneChangeContext is C2's persistent state (spec.md §3, "Lane-change
// context"). It is owned exclusively by the state machine and read by
// C3 for fading and by C6 for the published state/direction.
type LaneChangeContext struct {
	State     busmsg.LaneChangeState
	Direction busmsg.LaneChangeDirection

	TimerS     float64
	LlProb     float64
	WaitTimerS float64

	prevOneBlinker bool
}

// Desire reports the high-level intent for the current (state,
// direction) pair.
func (c *LaneChangeContext) Desire() busmsg.Desire {
	return desireFor(c.State, c.Direction)
}

// Step advances the state machine by one frame. The live transition
// rules below are the ones the original source actually executes; an
// alternate branch with different certainty thresholds exists only as
// dead, commented-out code upstream and is deliberately not
// reproduced (spec.md §9).
func (c *LaneChangeContext) Step(in LaneChangeInputs, dt float64) {
	oneBlinker := in.LeftBlinker != in.RightBlinker
	belowMinSpeed := in.VEgo < in.MinSpeedMS

	if !in.Active ||
		c.TimerS > laneChangeTimerMaxS ||
		(math.Abs(in.OutputScale) >= in.SteerMaxV-steerMaxVMargin && c.TimerS > postAbortGraceS) {
		c.State = busmsg.LaneChangeStateOff
		c.Direction = busmsg.LaneChangeDirectionNone
	}

	// A blinker rising edge enters preLaneChange, and the preLaneChange
	// rules below already run in that same frame.
	if c.State == busmsg.LaneChangeStateOff && oneBlinker && !c.prevOneBlinker && !belowMinSpeed {
		c.State = busmsg.LaneChangeStatePreLaneChange
		c.LlProb = 1.0
		c.WaitTimerS = 0
	}

	switch c.State {
	case busmsg.LaneChangeStatePreLaneChange:
		c.WaitTimerS += dt
		switch {
		case in.LeftBlinker:
			c.Direction = busmsg.LaneChangeDirectionLeft
		case in.RightBlinker:
			c.Direction = busmsg.LaneChangeDirectionRight
		default:
			c.Direction = busmsg.LaneChangeDirectionNone
		}

		blindspot := (c.Direction == busmsg.LaneChangeDirectionLeft && in.LeftBlindspot) ||
			(c.Direction == busmsg.LaneChangeDirectionRight && in.RightBlindspot)
		torqueApplied := in.SteeringPressed && torqueMatchesDirection(in.SteeringTorque, c.Direction)

		switch {
		case !oneBlinker || belowMinSpeed:
			c.State = busmsg.LaneChangeStateOff
		case !blindspot && (torqueApplied || (in.AutoDelayS > 0 && c.WaitTimerS > in.AutoDelayS)):
			c.State = busmsg.LaneChangeStateStarting
		}

	case busmsg.LaneChangeStateStarting:
		rate := linearInterp(in.VEgo, fadeSpeeds, fadeRates)
		c.LlProb = math.Max(c.LlProb-rate*dt, 0)
		if in.LLaneChangeProb+in.RLaneChangeProb < finishingProbMinSum && c.LlProb < finishingLlProbFloor {
			c.State = busmsg.LaneChangeStateFinishing
		}

	case busmsg.LaneChangeStateFinishing:
		c.LlProb = math.Min(c.LlProb+dt, 1)
		if c.LlProb > finishingDoneAt {
			if oneBlinker {
				c.State = busmsg.LaneChangeStatePreLaneChange
			} else {
				c.State = busmsg.LaneChangeStateOff
			}
		}
	}

	if c.State == busmsg.LaneChangeStateOff || c.State == busmsg.LaneChangeStatePreLaneChange {
		c.TimerS = 0
	} else {
		c.TimerS += dt
	}
	c.prevOneBlinker = oneBlinker
}

// torqueMatchesDirection reports whether the driver's applied torque
// points the same way as the candidate lane change. Positive torque is
// taken as a left pull, matching the sign convention of the upstream
// steering torque signal.
func torqueMatchesDirection(torque float64, dir busmsg.LaneChangeDirection) bool {
	switch dir {
	case busmsg.LaneChangeDirectionLeft:
		return torque > 0
	case busmsg.LaneChangeDirectionRight:
		return torque < 0
	default:
		return false
	}
}
