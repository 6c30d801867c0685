package planner

import "github.com/nakashivu1/openpilot-lateral-planner/busmsg"

// desireTable is the compile-time lookup for C2's published intent: a
// pure function of (state, direction), never nested conditionals
// (spec.md §4.2, §9).
var desireTable = [4][3]busmsg.Desire{
	busmsg.LaneChangeStateOff:             {busmsg.DesireNone, busmsg.DesireNone, busmsg.DesireNone},
	busmsg.LaneChangeStatePreLaneChange:   {busmsg.DesireNone, busmsg.DesireNone, busmsg.DesireNone},
	busmsg.LaneChangeStateStarting:        {busmsg.DesireNone, busmsg.DesireLaneChangeLeft, busmsg.DesireLaneChangeRight},
	busmsg.LaneChangeStateFinishing:       {busmsg.DesireNone, busmsg.DesireLaneChangeLeft, busmsg.DesireLaneChangeRight},
}

func desireFor(state busmsg.LaneChangeState, dir busmsg.LaneChangeDirection) busmsg.Desire {
	return desireTable[state][dir]
}
