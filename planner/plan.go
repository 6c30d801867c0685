package planner

import (
	"os"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
)

// Publish assembles the outgoing plan frame (C6). It is the only place
// standstill_elapsed_time is updated, since it depends only on the raw
// carState input already available to Update's caller (spec.md §4.6).
func (pl *Planner) Publish(in FrameInputs) busmsg.LateralPlan {
	if in.CarState.StandStill {
		pl.standstillS += frameDT
	} else {
		pl.standstillS = 0
	}

	valid := in.CarState.Valid && in.CarState.Alive &&
		in.ControlsState.Valid && in.ControlsState.Alive &&
		in.Model.Valid && in.Model.Alive

	return busmsg.LateralPlan{
		Valid: valid,

		LaneWidth:   pl.lanePlanner.LaneWidth(),
		DPathPoints: append([]float64(nil), pl.driver.YPts()...),
		LProb:       pl.lastLllProb,
		RProb:       pl.lastRllProb,
		DProb:       pl.lanePlanner.DProb,

		RawCurvature:  pl.lastCurvature.RawCurvature,
		RawCurvRate:   pl.lastCurvature.RawCurvatureRate,
		Curvature:     pl.lastCurvature.Curvature,
		CurvatureRate: pl.lastCurvature.CurvatureRate,
		MPCSolnValid:  pl.driver.Valid(),

		Desire:              pl.laneChange.Desire(),
		LaneChangeState:     pl.laneChange.State,
		LaneChangeDirection: pl.laneChange.Direction,

		SteerRateCost:         pl.lastSteerCost,
		OutputScale:           pl.outputScale,
		VCruiseSet:            in.ControlsState.VCruise,
		VCurvature:            in.ControlsState.Curvature,
		SteerAngleDesireDeg:   in.ControlsState.SteeringAngleDesiredDeg,
		LanelessMode:          pl.lastMode == ModeLaneless,
		SteerActuatorDelay:    in.CP.SteerActuatorDelay,
		StandstillElapsedTime: pl.standstillS,
	}
}

// PublishDebug returns the optional liveMpc debug frame, gated on the
// LOG_MPC environment variable (spec.md §6).
func (pl *Planner) PublishDebug() (busmsg.LiveMpc, bool) {
	if os.Getenv("LOG_MPC") == "" {
		return busmsg.LiveMpc{}, false
	}
	sol := pl.driver.Solution()
	return busmsg.LiveMpc{
		X:         append([]float64(nil), sol.X[:]...),
		Y:         append([]float64(nil), sol.Y[:]...),
		Psi:       append([]float64(nil), sol.Psi[:]...),
		Curvature: append([]float64(nil), sol.Curvature[:]...),
		Cost:      sol.Cost,
	}, true
}
