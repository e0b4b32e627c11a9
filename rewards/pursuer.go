package rewards

import (
	"fmt"

	"github.com/zeu5/gridchase-rl/core"
)

type PursuerEvent int

const (
	PursuerIdle PursuerEvent = iota
	PursuerEaten
	PursuerFrightened
	PursuerChasing
)

func (e PursuerEvent) String() string {
	switch e {
	case PursuerIdle:
		return "idle"
	case PursuerEaten:
		return "eaten"
	case PursuerFrightened:
		return "frightened"
	case PursuerChasing:
		return "chasing"
	}
	return fmt.Sprintf("PursuerEvent(%d)", int(e))
}

// PursuerRewards depend only on the pursuer's mode and whether it sees the
// evader.
type PursuerRewards struct {
	Eaten      float64 `yaml:"eaten" json:"eaten"`
	Frightened float64 `yaml:"frightened" json:"frightened"`
	Chasing    float64 `yaml:"chasing" json:"chasing"`
	Idle       float64 `yaml:"idle" json:"idle"`
}

func DefaultPursuerRewards() PursuerRewards {
	return PursuerRewards{
		Eaten:      -100,
		Frightened: -1,
		Chasing:    10,
		Idle:       0,
	}
}

func (r PursuerRewards) Classify(mode core.Mode, seesEvader bool) PursuerEvent {
	switch {
	case mode == core.ModeEaten:
		return PursuerEaten
	case mode == core.ModeFrightened:
		return PursuerFrightened
	case mode == core.ModeChase && seesEvader:
		return PursuerChasing
	}
	return PursuerIdle
}

func (r PursuerRewards) Value(e PursuerEvent) float64 {
	switch e {
	case PursuerEaten:
		return r.Eaten
	case PursuerFrightened:
		return r.Frightened
	case PursuerChasing:
		return r.Chasing
	}
	return r.Idle
}

func (r PursuerRewards) Reward(mode core.Mode, seesEvader bool) float64 {
	return r.Value(r.Classify(mode, seesEvader))
}
