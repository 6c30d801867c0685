package planner

import (
	"math"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/samber/lo"
)

// Mode names which path/weight pair the arbiter selected this frame.
type Mode int

const (
	ModeLane Mode = iota
	ModeLaneless
)

// Cost weight defaults. The spec notes these are "provided by the
// solver library's headers" in the original stack; here they are
// ordinary configurable constants with the documented default values
// (spec.md §6, §9).
const (
	PathCost    = 1.0
	HeadingCost = 1.0
)

// Arbitration policy constants (spec.md §4.3, §9 "magic constants").
const (
	stoppingTicksDefault       = 60
	stoppingLeadDistanceM      = 25.0
	stoppingLowSpeedMS         = 5.0
	stoppingSteerDivergenceDeg = 2.0
	laneProbLowThreshold       = 0.2
	laneProbHighThreshold      = 0.4
	lanelessPathCostClipMin    = 0.5
	lanelessPathCostClipMax    = 5.0
)

var steerRateCostSpeeds = []float64{1, 8, 15}

// SteerRateCost ramps the MPC's rate-cost weight by ego speed, landing
// on the car's own steerRateCost at highway speed (spec.md §4.3).
func SteerRateCost(vEgo, carSteerRateCost float64) float64 {
	return linearInterp(vEgo, steerRateCostSpeeds, []float64{1.0, 0.8, carSteerRateCost})
}

// Weights is the (path, heading) cost pair handed to the MPC driver.
type Weights struct {
	PathCost    float64
	HeadingCost float64
}

// ArbiterContext is C3's persistent state (spec.md §3, "Arbiter
// context").
type ArbiterContext struct {
	LanelessMode int
	UseLanelines bool

	Buffer       bool
	AtStopping   bool
	StoppingTicks int
}

// SelectInputs is C3's per-step input set.
type SelectInputs struct {
	VEgo float64

	RawPathY0, RawPathYStd0 float64

	LeadPresent       bool
	LeadDRel, LeadVRel float64

	SteerAngleDesiredDeg, SteeringAngleDeg float64

	LaneChangeState busmsg.LaneChangeState

	LllProb, RllProb float64
}

// Select runs the nine-rule priority chain and returns which path to
// track and the weights to push into the MPC (spec.md §4.3). It
// mutates Buffer/AtStopping/StoppingTicks in place.
func (a *ArbiterContext) Select(in SelectInputs) (Mode, Weights) {
	if a.StoppingTicks > 0 {
		a.StoppingTicks--
	}

	laneWeights := Weights{PathCost: PathCost, HeadingCost: HeadingCost}

	yStd := in.RawPathYStd0
	if yStd == 0 {
		yStd = 1e-6
	}
	lanelessWeights := Weights{
		PathCost:    lo.Clamp(math.Abs(in.RawPathY0/yStd), lanelessPathCostClipMin, lanelessPathCostClipMax) * PathCost,
		HeadingCost: linearInterp(in.VEgo, []float64{5, 10}, []float64{HeadingCost, 0}),
	}

	stateOff := in.LaneChangeState == busmsg.LaneChangeStateOff
	avgLaneProb := (in.LllProb + in.RllProb) / 2

	switch {
	case a.UseLanelines:
		return ModeLane, laneWeights

	case a.LanelessMode == 0:
		return ModeLane, laneWeights

	case a.leadCloseAndSlow(in) &&
		math.Abs(in.SteerAngleDesiredDeg-in.SteeringAngleDeg) > stoppingSteerDivergenceDeg &&
		stateOff:
		a.AtStopping = true
		a.StoppingTicks = stoppingTicksDefault
		return ModeLaneless, lanelessWeights

	case a.AtStopping && (in.VEgo < 0.5 || a.StoppingTicks <= 0):
		a.AtStopping = false
		return ModeLane, laneWeights

	case a.LanelessMode == 1:
		return ModeLaneless, lanelessWeights

	case a.LanelessMode == 2 && avgLaneProb < laneProbLowThreshold && stateOff:
		a.Buffer = true
		return ModeLaneless, lanelessWeights

	case a.LanelessMode == 2 && avgLaneProb > laneProbHighThreshold && a.Buffer && !a.AtStopping && stateOff:
		a.Buffer = false
		return ModeLane, laneWeights

	case a.LanelessMode == 2 && a.Buffer && stateOff:
		return ModeLaneless, lanelessWeights

	default:
		a.Buffer = false
		return ModeLane, laneWeights
	}
}

func (a *ArbiterContext) leadCloseAndSlow(in SelectInputs) bool {
	if !in.LeadPresent || in.LeadDRel >= stoppingLeadDistanceM {
		return false
	}
	return in.LeadVRel < 0 || (in.LeadVRel >= 0 && in.VEgo < stoppingLowSpeedMS)
}

// ApplyLaneChangeFade scales lane-line probabilities down by C2's
// ll_prob while a lane change is in progress, since lane lines
// genuinely disappear from view during the maneuver (spec.md §4.3).
func ApplyLaneChangeFade(lllProb, rllProb float64, desire busmsg.Desire, llProb float64) (float64, float64) {
	if desire == busmsg.DesireLaneChangeLeft || desire == busmsg.DesireLaneChangeRight {
		return lllProb * llProb, rllProb * llProb
	}
	return lllProb, rllProb
}
