// Package busmsg defines the typed boundary between the lateral planner
// and the rest of the stack: the frames it reads from the bus
// (carState, controlsState, modelV2, radarState, CP) and the frame it
// publishes (lateralPlan / liveMpc). The bus transport itself is out of
// scope — these are plain value types, not RPC stubs.
package busmsg

// TrajectorySize is the number of samples the vision model emits per
// frame (H in the spec).
const TrajectorySize = 33

// LateralTuningKind tags which variant of LateralControlState.Output is
// populated, mirroring the CP.lateralTuning.which() union in the
// original stack.
type LateralTuningKind int

const (
	LateralTuningPID LateralTuningKind = iota
	LateralTuningIndi
	LateralTuningLQR
)

// LateralControlState is a tagged union over the three lateral control
// loop variants. Only the field matching Kind is meaningful.
type LateralControlState struct {
	Kind      LateralTuningKind
	PidState  struct{ Output float64 }
	IndiState struct{ Output float64 }
	LqrState  struct{ Output float64 }
}

// Output extracts the active variant's output, regardless of which
// lateral tuning the car uses. An unrecognized Kind leaves the return
// value at zero; callers that must preserve the previous value do so
// themselves (see planner.Planner.outputScale).
func (s LateralControlState) Output() (value float64, ok bool) {
	switch s.Kind {
	case LateralTuningPID:
		return s.PidState.Output, true
	case LateralTuningIndi:
		return s.IndiState.Output, true
	case LateralTuningLQR:
		return s.LqrState.Output, true
	default:
		return 0, false
	}
}

// CarState mirrors the subset of cereal's carState the planner reads.
type CarState struct {
	Valid bool
	Alive bool

	VEgo             float64
	StandStill       bool
	LeftBlinker      bool
	RightBlinker     bool
	SteeringPressed  bool
	SteeringTorque   float64
	LeftBlindspot    bool
	RightBlindspot   bool
	SteeringAngleDeg float64
}

// ControlsState mirrors the subset of cereal's controlsState the
// planner reads.
type ControlsState struct {
	Valid bool
	Alive bool

	Active                  bool
	VCruise                 float64
	Curvature               float64
	SteeringAngleDesiredDeg float64
	LateralControlState     LateralControlState
}

// ModelPosition carries the H-sample position/time/std arrays from the
// vision model.
type ModelPosition struct {
	X, Y, Z          [TrajectorySize]float64
	T                [TrajectorySize]float64
	XStd, YStd, ZStd [TrajectorySize]float64
}

// ModelOrientation carries the H-sample orientation arrays; only Z
// (yaw) is consumed by the planner.
type ModelOrientation struct {
	Z [TrajectorySize]float64
}

// LaneLineData carries one side's lane-line geometry and confidence as
// produced by the vision model.
type LaneLineData struct {
	Prob           float64
	LaneChangeProb float64
	Y              [TrajectorySize]float64
}

// ModelV2 mirrors the subset of cereal's modelV2 the planner reads.
type ModelV2 struct {
	Valid bool
	Alive bool

	Position    ModelPosition
	Orientation ModelOrientation
	LeftLane    LaneLineData
	RightLane   LaneLineData
}

// LeadOne mirrors radarState.leadOne.
type LeadOne struct {
	Present bool
	DRel    float64
	VRel    float64
}

// RadarState mirrors the subset of cereal's radarState the planner reads.
type RadarState struct {
	LeadOne LeadOne
}

// CarParams mirrors the static, per-session subset of cereal's CarParams.
type CarParams struct {
	SteerRateCost      float64
	SteerMaxV          [1]float64
	SteerActuatorDelay float64
	LateralTuning      LateralTuningKind
}

// LaneChangeState enumerates C2's state machine states.
type LaneChangeState int

const (
	LaneChangeStateOff LaneChangeState = iota
	LaneChangeStatePreLaneChange
	LaneChangeStateStarting
	LaneChangeStateFinishing
)

func (s LaneChangeState) String() string {
	switch s {
	case LaneChangeStateOff:
		return "off"
	case LaneChangeStatePreLaneChange:
		return "preLaneChange"
	case LaneChangeStateStarting:
		return "laneChangeStarting"
	case LaneChangeStateFinishing:
		return "laneChangeFinishing"
	default:
		return "unknown"
	}
}

// LaneChangeDirection enumerates C2's direction output.
type LaneChangeDirection int

const (
	LaneChangeDirectionNone LaneChangeDirection = iota
	LaneChangeDirectionLeft
	LaneChangeDirectionRight
)

// Desire enumerates the high-level intent communicated downstream.
type Desire int

const (
	DesireNone Desire = iota
	DesireLaneChangeLeft
	DesireLaneChangeRight
)

// LateralPlan is the outgoing plan frame (spec.md §6).
type LateralPlan struct {
	Valid bool

	LaneWidth     float64
	DPathPoints   []float64
	LProb         float64
	RProb         float64
	DProb         float64
	RawCurvature  float64
	RawCurvRate   float64
	Curvature     float64
	CurvatureRate float64
	MPCSolnValid  bool

	Desire              Desire
	LaneChangeState     LaneChangeState
	LaneChangeDirection LaneChangeDirection

	SteerRateCost          float64
	OutputScale            float64
	VCruiseSet             float64
	VCurvature             float64
	SteerAngleDesireDeg    float64
	LanelessMode           bool
	SteerActuatorDelay     float64
	StandstillElapsedTime  float64
}

// LiveMpc is the optional debug frame, sent only when LOG_MPC is set.
type LiveMpc struct {
	X, Y, Psi, Curvature []float64
	Cost                 float64
}
