package mpcsolver_test

import (
	"math"
	"testing"

	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightPoints() ([]float64, []float64) {
	y := make([]float64, mpcsolver.N+1)
	heading := make([]float64, mpcsolver.N+1)
	return y, heading
}

func TestRunTracksStraightPath(t *testing.T) {
	s := mpcsolver.New()
	s.SetWeights(1.0, 1.0, 1.0)

	state := &mpcsolver.State{}
	var out mpcsolver.Solution
	y, heading := straightPoints()

	s.Run(state, &out, 20.0, 0, y, heading)

	for i, k := range out.Curvature {
		assert.False(t, math.IsNaN(k), "curvature[%d] is NaN", i)
	}
	assert.InDelta(t, 0, out.Curvature[0], 1e-9)
	assert.InDelta(t, 0, out.Cost, 1e-6)
}

func TestRunTracksCurvedPath(t *testing.T) {
	s := mpcsolver.New()
	s.SetWeights(1.0, 0.1, 0.1)

	state := &mpcsolver.State{}
	var out mpcsolver.Solution
	y := make([]float64, mpcsolver.N+1)
	heading := make([]float64, mpcsolver.N+1)
	for i := range y {
		y[i] = 0.02 * float64(i*i)
	}

	s.Run(state, &out, 15.0, 0, y, heading)

	require.False(t, math.IsNaN(out.Cost))
	assert.Greater(t, out.Y[mpcsolver.N], 0.0, "solution should curve toward the target path")
}

func TestRunRejectsWrongLengthInputs(t *testing.T) {
	s := mpcsolver.New()
	var out mpcsolver.Solution
	assert.Panics(t, func() {
		s.Run(&mpcsolver.State{}, &out, 10, 0, []float64{0, 1}, []float64{0, 1})
	})
}

func TestHigherRateCostDampensControl(t *testing.T) {
	y := make([]float64, mpcsolver.N+1)
	heading := make([]float64, mpcsolver.N+1)
	for i := range y {
		y[i] = 1.0
	}

	loose := mpcsolver.New()
	loose.SetWeights(1.0, 1.0, 0.01)
	var outLoose mpcsolver.Solution
	loose.Run(&mpcsolver.State{}, &outLoose, 20, 0, y, heading)

	stiff := mpcsolver.New()
	stiff.SetWeights(1.0, 1.0, 100.0)
	var outStiff mpcsolver.Solution
	stiff.Run(&mpcsolver.State{}, &outStiff, 20, 0, y, heading)

	sumAbs := func(s []float64) float64 {
		total := 0.0
		for _, v := range s {
			total += math.Abs(v)
		}
		return total
	}
	assert.Less(t, sumAbs(outStiff.CurvatureRate[:]), sumAbs(outLoose.CurvatureRate[:]))
}
