package agents

import (
	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/rewards"
)

// Transition is a decision whose reward is not known yet.
type Transition struct {
	State  core.State
	Action core.Action
}

// EvaderMemory is the evader's per-episode state.
type EvaderMemory struct {
	Steps     int
	Return    float64
	LastEvent rewards.EvaderEvent
}

// PursuerMemory is the pursuer's per-episode state.
type PursuerMemory struct {
	// ReleaseTimer counts gated steps before the pursuer leaves its house.
	ReleaseTimer int
	// Pending is the previous active decision, credited on the next active step.
	Pending *Transition

	Updates int
	Return  float64
}
