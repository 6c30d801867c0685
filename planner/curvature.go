package planner

import (
	"math"

	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/samber/lo"
)

// Rate-limit envelope breakpoints. Must match byte-for-byte for
// behavioural compatibility (spec.md §6).
var (
	maxCurvatureRateSpeeds = []float64{0, 35}
	maxCurvatureRates      = []float64{0.03762194918267951, 0.003441203371932992}
)

// CurvatureInputs is C5's per-step input set.
type CurvatureInputs struct {
	Solution           *mpcsolver.Solution
	TIdxs              []float64
	VEgo               float64
	SteerActuatorDelay float64
	DT                 float64
}

// CurvatureOutput is C5's per-step result, also the values C6 publishes.
type CurvatureOutput struct {
	RawCurvature     float64
	RawCurvatureRate float64
	Curvature        float64
	CurvatureRate    float64
}

// CurvaturePostProcessor holds the one piece of state the rate limiter
// needs: its own previous output, independent of anything the solver
// does from frame to frame (spec.md §4.5).
type CurvaturePostProcessor struct {
	prevSafeCurvature float64
}

// Step applies actuator-delay compensation and the speed-dependent
// rate limit to the raw MPC solution.
func (p *CurvaturePostProcessor) Step(in CurvatureInputs) CurvatureOutput {
	currentKappa := in.Solution.Curvature[0]
	delay := math.Max(in.SteerActuatorDelay, 0)

	psi := linearInterp(delay, in.TIdxs, in.Solution.Psi[:])
	deltaKappa := 0.0
	if delay > 0 {
		deltaKappa = psi/(math.Max(in.VEgo, 0.1)*delay) - currentKappa
	}
	desiredKappa := currentKappa + 2*deltaKappa
	desiredKappaRate := in.Solution.CurvatureRate[0]

	kappaRateMax := linearInterp(in.VEgo, maxCurvatureRateSpeeds, maxCurvatureRates)

	safeRate := lo.Clamp(desiredKappaRate, -kappaRateMax, kappaRateMax)
	step := kappaRateMax / in.DT
	safeKappa := lo.Clamp(desiredKappa, p.prevSafeCurvature-step, p.prevSafeCurvature+step)

	p.prevSafeCurvature = safeKappa

	return CurvatureOutput{
		RawCurvature:     desiredKappa,
		RawCurvatureRate: desiredKappaRate,
		Curvature:        safeKappa,
		CurvatureRate:    safeRate,
	}
}
