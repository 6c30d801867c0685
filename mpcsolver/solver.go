// Package mpcsolver implements the native numerical solver C4 invokes.
// The spec (spec.md §9) treats this as an external black box behind a
// fixed contract (init / set_weights / run); Solver is that contract,
// and ltvSolver is a concrete implementation built on gonum's linear
// algebra package rather than a hand-rolled stdlib optimizer.
package mpcsolver

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var log = logrus.WithField("module", "mpcsolver")

// N is the MPC prediction horizon length in steps (spec.md §3).
const N = 16

// DT is the per-step duration of the solver's internal shooting grid.
// It is independent of the model frame period; the planner supplies
// y_pts/heading_pts already sampled on its own t_idxs grid.
const DT = 0.05

// State is the MPC's internal (x, y, psi, curvature) state, owned
// exclusively by C4 and reset before every solver invocation.
type State struct {
	X, Y, Psi, Curvature float64
}

// Solution holds one solver call's output arrays, sized N+1 for the
// state trajectories and N for the curvature-rate control sequence.
type Solution struct {
	X, Y, Psi, Curvature [N + 1]float64
	CurvatureRate        [N]float64
	Cost                 float64
}

// Solver is the fixed contract C4 programs against. Implementations may
// wrap a native QP/NLP library; the planner does not inspect internals.
type Solver interface {
	Init()
	SetWeights(pathCost, headingCost, rateCost float64)
	Run(state *State, out *Solution, vEgo, rotationRadius float64, yPts, headingPts []float64)
}

// ltvSolver linearizes the kinematic bicycle model about zero heading
// and solves the resulting quadratic cost in closed form — a single
// weighted linear least-squares solve over the curvature-rate sequence
// — rather than iterating a general nonlinear solver. The lateral
// dynamics are genuinely linear under that linearization, so one solve
// is exact, not an approximation of an iterative scheme.
type ltvSolver struct {
	pathCost, headingCost, rateCost float64
}

// New returns the shipped Solver implementation.
func New() Solver {
	s := &ltvSolver{}
	s.Init()
	return s
}

func (s *ltvSolver) Init() {
	s.pathCost = 1.0
	s.headingCost = 1.0
	s.rateCost = 1.0
}

func (s *ltvSolver) SetWeights(pathCost, headingCost, rateCost float64) {
	s.pathCost = pathCost
	s.headingCost = headingCost
	s.rateCost = rateCost
}

// trajectory holds the forward-simulated state arrays (offsets, i.e.
// the value at u=0) plus the Jacobian of each array with respect to the
// N-long curvature-rate decision vector u.
type trajectory struct {
	kappaOffset, psiOffset, yOffset, xOffset [N + 1]float64
	kappaJac, psiJac, yJac                   [N + 1][N]float64
}

// simulate forward-integrates the linearized kinematic bicycle model
// from the given seed state, tracking both the nominal (u=0) trajectory
// and its Jacobian with respect to u in a single pass.
func simulate(seed *State, vEff float64) trajectory {
	var t trajectory
	t.kappaOffset[0] = seed.Curvature
	t.psiOffset[0] = seed.Psi
	t.yOffset[0] = seed.Y
	t.xOffset[0] = seed.X

	for k := 0; k < N; k++ {
		t.xOffset[k+1] = t.xOffset[k] + vEff*DT
		t.psiOffset[k+1] = t.psiOffset[k] + vEff*DT*t.kappaOffset[k]
		t.yOffset[k+1] = t.yOffset[k] + vEff*DT*t.psiOffset[k]
		t.kappaOffset[k+1] = t.kappaOffset[k]

		for j := 0; j < N; j++ {
			t.psiJac[k+1][j] = t.psiJac[k][j] + vEff*DT*t.kappaJac[k][j]
			t.yJac[k+1][j] = t.yJac[k][j] + vEff*DT*t.psiJac[k][j]
			t.kappaJac[k+1][j] = t.kappaJac[k][j]
		}
		t.kappaJac[k+1][k] += DT
	}
	return t
}

// Run solves for the curvature-rate sequence u (length N) minimizing
//
//	sum_{k=1}^N pathCost*(y_k-yPts_k)^2 + headingCost*(psi_k-headingPts_k)^2 + rateCost*u_{k-1}^2
//
// subject to the linear recursion simulate builds. vEff corrects the
// nominal speed for CAR_ROTATION_RADIUS the way a non-zero scrub radius
// changes the mapping from curvature to yaw rate; it is evaluated once
// from the seed curvature rather than re-linearized every step (see
// DESIGN.md).
func (s *ltvSolver) Run(state *State, out *Solution, vEgo, rotationRadius float64, yPts, headingPts []float64) {
	if len(yPts) != N+1 || len(headingPts) != N+1 {
		log.Panicf("mpcsolver: expected %d points, got y=%d heading=%d", N+1, len(yPts), len(headingPts))
	}

	denom := 1 - rotationRadius*state.Curvature
	if math.Abs(denom) < 1e-3 {
		denom = math.Copysign(1e-3, denom)
	}
	vEff := vEgo / denom
	t := simulate(state, vEff)

	ata := mat.NewDense(N, N, nil)
	atr := mat.NewVecDense(N, nil)
	for k := 1; k <= N; k++ {
		rY := yPts[k] - t.yOffset[k]
		rPsi := headingPts[k] - t.psiOffset[k]
		for i := 0; i < N; i++ {
			ai, bi := t.yJac[k][i], t.psiJac[k][i]
			for j := 0; j < N; j++ {
				aj, bj := t.yJac[k][j], t.psiJac[k][j]
				ata.Set(i, j, ata.At(i, j)+s.pathCost*ai*aj+s.headingCost*bi*bj)
			}
			atr.SetVec(i, atr.AtVec(i)+s.pathCost*ai*rY+s.headingCost*bi*rPsi)
		}
	}
	for i := 0; i < N; i++ {
		ata.Set(i, i, ata.At(i, i)+s.rateCost)
	}

	var u mat.VecDense
	if err := u.SolveVec(ata, atr); err != nil {
		log.Warnf("mpcsolver: singular normal equations: %v", err)
		for i := range out.Curvature {
			out.Curvature[i] = math.NaN()
		}
		out.Cost = math.NaN()
		return
	}

	out.X = t.xOffset
	cost := 0.0
	for k := 0; k <= N; k++ {
		yk, psik, kk := t.yOffset[k], t.psiOffset[k], t.kappaOffset[k]
		for j := 0; j < N; j++ {
			uj := u.AtVec(j)
			yk += t.yJac[k][j] * uj
			psik += t.psiJac[k][j] * uj
			kk += t.kappaJac[k][j] * uj
		}
		out.Y[k] = yk
		out.Psi[k] = psik
		out.Curvature[k] = kk
		if k >= 1 {
			cost += s.pathCost*(yk-yPts[k])*(yk-yPts[k]) + s.headingCost*(psik-headingPts[k])*(psik-headingPts[k])
		}
	}
	for k := 0; k < N; k++ {
		out.CurvatureRate[k] = u.AtVec(k)
		cost += s.rateCost * u.AtVec(k) * u.AtVec(k)
	}
	out.Cost = cost
}
