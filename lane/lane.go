// Package lane implements C1, the lane-line model adapter: it turns one
// vision-model frame into usable lane-line probabilities, a lane-width
// estimate, a synthesizability confidence (d_prob), and a blended
// driving path (spec.md §4.1).
package lane

import (
	"math"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "lane")

// widthFilterTimeConstant sets how quickly the low-passed lane-width
// estimate tracks the instantaneous left/right spacing.
const widthFilterTimeConstant = 5.0 // seconds

// defaultLaneWidth seeds the estimate before any frame has been parsed.
const defaultLaneWidth = 3.7 // meters, US lane width convention

// Point3 is a bare (x, y, z) sample, used for trajectory/path arrays
// exchanged between the lane adapter and the MPC driver.
type Point3 struct {
	X, Y, Z float64
}

// Planner holds C1's persistent state: the lane-width low-pass filter
// plus the last frame's derived probabilities, read by C3 (the mode
// arbiter) and C4 (the MPC driver) every step.
type Planner struct {
	dt float64

	laneWidth float64

	LllProb         float64
	RllProb         float64
	LLaneChangeProb float64
	RLaneChangeProb float64
	DProb           float64
}

// New returns a Planner seeded with the default lane width, ticking at
// the given model frame period.
func New(dt float64) *Planner {
	return &Planner{dt: dt, laneWidth: defaultLaneWidth}
}

// LaneWidth returns the low-passed lane-width estimate.
func (p *Planner) LaneWidth() float64 { return p.laneWidth }

// ParseModel consumes one vision frame: it updates the usable
// probabilities, the transition ("about to disappear") probabilities,
// the lane-width estimate and d_prob. The arbiter (C3), not this
// component, decides whether a low LllProb/RllProb means lane lines
// should be treated as absent (spec.md §4.1, edge cases).
func (p *Planner) ParseModel(m busmsg.ModelV2) {
	p.LllProb = m.LeftLane.Prob
	p.RllProb = m.RightLane.Prob
	p.LLaneChangeProb = m.LeftLane.LaneChangeProb
	p.RLaneChangeProb = m.RightLane.LaneChangeProb

	currentWidth := math.Abs(m.RightLane.Y[0] - m.LeftLane.Y[0])
	alpha := p.dt / (widthFilterTimeConstant + p.dt)
	p.laneWidth = lo.Clamp(p.laneWidth+(currentWidth-p.laneWidth)*alpha, 2.0, 5.0)

	// d_prob: confidence at least one lane line is usable, treating the
	// two sides as independent evidence.
	p.DProb = p.LllProb + p.RllProb - p.LllProb*p.RllProb
}

// GetDPath blends the lane-centered line with the raw model path,
// weighted by d_prob, sampled on the model's own time grid (t_idxs).
// vEgo is accepted to match the documented contract (spec.md §4.1); the
// blend itself does not need it once the model path is already sampled
// on a time grid.
func (p *Planner) GetDPath(vEgo float64, modelPath []Point3, leftY, rightY []float64) []Point3 {
	if len(modelPath) == 0 {
		log.Warn("lane: GetDPath called with empty model path")
		return modelPath
	}
	d := make([]Point3, len(modelPath))
	for i, pt := range modelPath {
		laneCenterY := pt.Y
		if i < len(leftY) && i < len(rightY) {
			laneCenterY = (leftY[i] + rightY[i]) / 2
		}
		d[i] = Point3{
			X: pt.X,
			Y: p.DProb*laneCenterY + (1-p.DProb)*pt.Y,
			Z: pt.Z,
		}
	}
	return d
}
