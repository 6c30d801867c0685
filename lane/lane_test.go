package lane_test

import (
	"testing"

	"github.com/nakashivu1/openpilot-lateral-planner/busmsg"
	"github.com/nakashivu1/openpilot-lateral-planner/lane"
	"github.com/stretchr/testify/assert"
)

func frameWithLanes(leftY, rightY float64, lllProb, rllProb float64) busmsg.ModelV2 {
	var m busmsg.ModelV2
	m.LeftLane.Prob = lllProb
	m.RightLane.Prob = rllProb
	m.LeftLane.Y[0] = leftY
	m.RightLane.Y[0] = rightY
	return m
}

func TestParseModelComputesDProbFromBothSides(t *testing.T) {
	p := lane.New(0.05)
	p.ParseModel(frameWithLanes(-1.85, 1.85, 0.9, 0.8))
	assert.InDelta(t, 0.98, p.DProb, 1e-9)
}

func TestParseModelLaneWidthTracksMeasurement(t *testing.T) {
	p := lane.New(0.05)
	for i := 0; i < 2000; i++ {
		p.ParseModel(frameWithLanes(-2.0, 2.0, 1, 1))
	}
	assert.InDelta(t, 4.0, p.LaneWidth(), 0.05)
}

func TestGetDPathBlendsTowardLaneCenterAsDProbRises(t *testing.T) {
	p := lane.New(0.05)
	p.ParseModel(frameWithLanes(-1.85, 1.85, 1, 1))

	modelPath := []lane.Point3{{X: 0, Y: 0.5, Z: 0}, {X: 10, Y: 1.0, Z: 0}}
	leftY := []float64{-1.85, -1.85}
	rightY := []float64{1.85, 1.85}

	out := p.GetDPath(10, modelPath, leftY, rightY)
	assert.InDelta(t, 0.0, out[0].Y, 1e-9)
	assert.InDelta(t, 0.0, out[1].Y, 1e-9)
}

func TestGetDPathHandlesEmptyPath(t *testing.T) {
	p := lane.New(0.05)
	out := p.GetDPath(10, nil, nil, nil)
	assert.Empty(t, out)
}
