package planner

import (
	"math"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/lane"
	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
)

// Infeasibility policy (spec.md §4.4, §6).
const (
	infeasibilityCostThreshold = 20000.0
	nanWarnIntervalS           = 5.0
	invalidCountLatch          = 3
)

// MPCDriverInputs is C4's per-step input set.
type MPCDriverInputs struct {
	VEgo              float64
	RotationRadius    float64
	Path              []lane.Point3
	RawModel          busmsg.ModelV2
	PathCost          float64
	HeadingCost       float64
	RateCost          float64
	MeasuredCurvature float64
	CurrentT          float64
}

// MPCDriver wraps the native solver contract with the bookkeeping
// spec.md §4.4 requires: y_pts/heading_pts preparation, infeasibility
// counting, NaN reseed, and kappa_seed autoregression.
type MPCDriver struct {
	solver mpcsolver.Solver

	state    mpcsolver.State
	solution mpcsolver.Solution
	yPts     []float64

	invalidCount int
	lastNaNWarnT float64

	tIdxs []float64
}

// NewMPCDriver builds a driver around the given solver, computing the
// shooting-grid time breakpoints once since the horizon is fixed.
func NewMPCDriver(solver mpcsolver.Solver) *MPCDriver {
	tIdxs := make([]float64, mpcsolver.N+1)
	for i := range tIdxs {
		tIdxs[i] = float64(i) * mpcsolver.DT
	}
	return &MPCDriver{solver: solver, tIdxs: tIdxs}
}

// Step prepares the solver inputs, invokes the solver, and reseeds
// state for the next frame.
func (d *MPCDriver) Step(in MPCDriverInputs) {
	d.yPts = sampleByDistance(d.tIdxs, in.VEgo, in.Path)
	headingPts := sampleHeading(d.tIdxs, in.VEgo, in.RawModel)

	d.state = mpcsolver.State{Curvature: d.state.Curvature}
	d.solver.SetWeights(in.PathCost, in.HeadingCost, in.RateCost)
	d.solver.Run(&d.state, &d.solution, in.VEgo, in.RotationRadius, d.yPts, headingPts)

	hasNaN := false
	for _, k := range d.solution.Curvature {
		if math.IsNaN(k) {
			hasNaN = true
			break
		}
	}
	if hasNaN || d.solution.Cost > infeasibilityCostThreshold {
		d.invalidCount++
	} else {
		d.invalidCount = 0
	}

	d.state.Curvature = linearInterp(frameDT, d.tIdxs, d.solution.Curvature[:])

	if hasNaN {
		d.solver.Init()
		d.state.Curvature = in.MeasuredCurvature
		if in.CurrentT-d.lastNaNWarnT >= nanWarnIntervalS {
			log.Warnf("mpc solver returned NaN curvature, reseeded from measured curvature %.4f", in.MeasuredCurvature)
			d.lastNaNWarnT = in.CurrentT
		}
	}
}

// Solution returns the last solve's output, owned exclusively by C4
// and read by C5/C6.
func (d *MPCDriver) Solution() *mpcsolver.Solution { return &d.solution }

// Valid reports false once three consecutive infeasible solves have
// latched invalidity, and true again after the next feasible solve
// (spec.md §4.4).
func (d *MPCDriver) Valid() bool { return d.invalidCount < invalidCountLatch }

// TIdxs exposes the shooting-grid breakpoints for callers (C5) that
// need to resample the solution on the same grid.
func (d *MPCDriver) TIdxs() []float64 { return d.tIdxs }

// YPts returns the N+1 distance-sampled lateral offsets the solver was
// asked to track this step (spec.md §6, dPathPoints).
func (d *MPCDriver) YPts() []float64 { return d.yPts }

func sampleByDistance(tIdxs []float64, vEgo float64, path []lane.Point3) []float64 {
	xs := make([]float64, len(path))
	ys := make([]float64, len(path))
	for i, p := range path {
		xs[i] = p.X
		ys[i] = p.Y
	}
	out := make([]float64, len(tIdxs))
	for i, t := range tIdxs {
		out[i] = linearInterp(vEgo*t, xs, ys)
	}
	return out
}

func sampleHeading(tIdxs []float64, vEgo float64, m busmsg.ModelV2) []float64 {
	xs := make([]float64, busmsg.TrajectorySize)
	ys := make([]float64, busmsg.TrajectorySize)
	for i := 0; i < busmsg.TrajectorySize; i++ {
		xs[i] = m.Position.X[i]
		ys[i] = m.Orientation.Z[i]
	}
	out := make([]float64, len(tIdxs))
	for i, t := range tIdxs {
		out[i] = linearInterp(vEgo*t, xs, ys)
	}
	return out
}
