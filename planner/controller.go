// Package planner wires components C1 through C6 into the single
// per-frame step the rest of the stack drives: one Update, one
// Publish, no internal concurrency (spec.md §5).
package planner

import (
	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/lane"
	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/nakashivu1/openpilot-lateral-planner/utils/config"
)

// frameDT is the model frame period (spec.md §3), mirrored from
// clock.DT. It is duplicated rather than imported to keep this package
// free of a dependency on the orchestration layer that drives it.
const frameDT = 0.05

// configPollIntervalS throttles the ConfigSource re-read to roughly
// once a second, driven by the planner's own accumulated frame time
// rather than a background goroutine (spec.md §5, §9).
const configPollIntervalS = 1.0

// carRotationRadius is CAR_ROTATION_RADIUS from spec.md §4.4: a
// per-vehicle scrub-radius correction applied to the effective speed
// fed into the solver. It defaults to zero, matching the vast majority
// of vehicles, and is exposed for cars where it matters.
var carRotationRadius = 0.0

// FrameInputs bundles everything one Update call consumes, mirroring
// the bus messages listed in spec.md §6.
type FrameInputs struct {
	CarState      busmsg.CarState
	ControlsState busmsg.ControlsState
	Model         busmsg.ModelV2
	Radar         busmsg.RadarState
	CP            busmsg.CarParams
}

// Planner orchestrates C1-C6. All of its state persists for the
// process lifetime and is mutated only inside Update and Publish, which
// advances the standstill timer (spec.md §3, §5).
type Planner struct {
	lanePlanner  *lane.Planner
	laneChange   LaneChangeContext
	arbiter      ArbiterContext
	driver       *MPCDriver
	postProcess  CurvaturePostProcessor
	configSource config.Source

	configAccumS float64
	outputScale  float64
	standstillS  float64
	frameT       float64

	lastCurvature CurvatureOutput
	lastMode      Mode
	lastLllProb   float64
	lastRllProb   float64
	lastSteerCost float64
}

// New builds a Planner around the given native solver and parameter
// source. Both are injected rather than constructed internally, per
// the native-solver and ConfigSource design notes (spec.md §9).
func New(solver mpcsolver.Solver, src config.Source) *Planner {
	return &Planner{
		lanePlanner:  lane.New(frameDT),
		driver:       NewMPCDriver(solver),
		configSource: src,
	}
}

// Update runs one full C1->C5 step. Publish (C6) is a separate call so
// callers can assemble and send the outgoing frame on their own
// schedule without re-running the planning work.
func (pl *Planner) Update(in FrameInputs) {
	pl.frameT += frameDT
	pl.configAccumS += frameDT
	if pl.configAccumS >= configPollIntervalS {
		pl.configSource.Poll()
		pl.configAccumS = 0
	}

	if v, ok := in.ControlsState.LateralControlState.Output(); ok {
		pl.outputScale = v
	} // else: retain prior value (spec.md §7, unknown lateral-tuning variant)

	pl.lanePlanner.ParseModel(in.Model)

	modelPath := make([]lane.Point3, busmsg.TrajectorySize)
	for i := 0; i < busmsg.TrajectorySize; i++ {
		modelPath[i] = lane.Point3{
			X: in.Model.Position.X[i],
			Y: in.Model.Position.Y[i],
			Z: in.Model.Position.Z[i],
		}
	}
	lanePath := pl.lanePlanner.GetDPath(in.CarState.VEgo, modelPath, in.Model.LeftLane.Y[:], in.Model.RightLane.Y[:])

	pl.laneChange.Step(LaneChangeInputs{
		Active:           in.ControlsState.Active,
		VEgo:             in.CarState.VEgo,
		LeftBlinker:      in.CarState.LeftBlinker,
		RightBlinker:     in.CarState.RightBlinker,
		SteeringPressed:  in.CarState.SteeringPressed,
		SteeringTorque:   in.CarState.SteeringTorque,
		LeftBlindspot:    in.CarState.LeftBlindspot,
		RightBlindspot:   in.CarState.RightBlindspot,
		OutputScale:      pl.outputScale,
		SteerMaxV:        in.CP.SteerMaxV[0],
		LLaneChangeProb:  pl.lanePlanner.LLaneChangeProb,
		RLaneChangeProb:  pl.lanePlanner.RLaneChangeProb,
		AutoDelayS:       pl.configSource.AutoDelaySeconds(),
		MinSpeedMS:       pl.configSource.MinSpeedMS(),
	}, frameDT)

	desire := pl.laneChange.Desire()
	pl.lastLllProb, pl.lastRllProb = ApplyLaneChangeFade(
		pl.lanePlanner.LllProb, pl.lanePlanner.RllProb, desire, pl.laneChange.LlProb,
	)

	pl.arbiter.UseLanelines = pl.configSource.UseLanelines()
	pl.arbiter.LanelessMode = pl.configSource.LanelessMode()

	mode, weights := pl.arbiter.Select(SelectInputs{
		VEgo:                 in.CarState.VEgo,
		RawPathY0:            in.Model.Position.Y[0],
		RawPathYStd0:         in.Model.Position.YStd[0],
		LeadPresent:          in.Radar.LeadOne.Present,
		LeadDRel:             in.Radar.LeadOne.DRel,
		LeadVRel:             in.Radar.LeadOne.VRel,
		SteerAngleDesiredDeg: in.ControlsState.SteeringAngleDesiredDeg,
		SteeringAngleDeg:     in.CarState.SteeringAngleDeg,
		LaneChangeState:      pl.laneChange.State,
		LllProb:              pl.lastLllProb,
		RllProb:              pl.lastRllProb,
	})
	pl.lastMode = mode

	targetPath := lanePath
	if mode == ModeLaneless {
		targetPath = modelPath
	}

	pl.lastSteerCost = SteerRateCost(in.CarState.VEgo, in.CP.SteerRateCost)

	pl.driver.Step(MPCDriverInputs{
		VEgo:              in.CarState.VEgo,
		RotationRadius:    carRotationRadius,
		Path:              targetPath,
		RawModel:          in.Model,
		PathCost:          weights.PathCost,
		HeadingCost:       weights.HeadingCost,
		RateCost:          pl.lastSteerCost,
		MeasuredCurvature: in.ControlsState.Curvature,
		CurrentT:          pl.frameT,
	})

	pl.lastCurvature = pl.postProcess.Step(CurvatureInputs{
		Solution:           pl.driver.Solution(),
		TIdxs:              pl.driver.TIdxs(),
		VEgo:               in.CarState.VEgo,
		SteerActuatorDelay: in.CP.SteerActuatorDelay,
		DT:                 frameDT,
	})
}
