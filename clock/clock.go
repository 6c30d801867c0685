// Package clock tracks the lateral planner's model-frame cadence: a
// fixed period DT (spec.md §3, "ΔT = model frame period"), advanced one
// frame per Update call. There is no sub-loop mechanism here — unlike
// the teacher's multi-manager simulation clock, the planner is driven
// one-for-one by incoming vision frames (spec.md §5).
package clock

import "fmt"

// DT is the model frame period in seconds (spec.md §3).
const DT = 0.05

// FrameClock advances in lockstep with incoming vision-model frames.
type FrameClock struct {
	Step int64
	T    float64
}

// New returns a FrameClock starting at step 0, time 0.
func New() *FrameClock {
	return &FrameClock{}
}

// Advance moves the clock forward by one model frame.
func (c *FrameClock) Advance() {
	c.Step++
	c.T = float64(c.Step) * DT
}

// String renders the current time as HH:MM:SS, the same format the
// teacher's clock uses for heartbeat logging.
func (c *FrameClock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
