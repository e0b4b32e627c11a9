// Package rewards maps the consequences of a step to a scalar reward for each
// role.
package rewards

import (
	"fmt"

	"github.com/zeu5/gridchase-rl/core"
)

// EvaderEvent is the first rule of the evader cascade that matched.
type EvaderEvent int

const (
	EvaderIdle EvaderEvent = iota
	EvaderCaught
	EvaderAteRival
	EvaderAtePowerPellet
	EvaderAtePellet
	EvaderEscaped
)

var evaderEventNames = map[EvaderEvent]string{
	EvaderIdle:           "idle",
	EvaderCaught:         "caught",
	EvaderAteRival:       "ate_rival",
	EvaderAtePowerPellet: "ate_power_pellet",
	EvaderAtePellet:      "ate_pellet",
	EvaderEscaped:        "escaped",
}

func (e EvaderEvent) String() string {
	if name, ok := evaderEventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EvaderEvent(%d)", int(e))
}

// EvaderOutcome is what the evader observed before and after its move.
type EvaderOutcome struct {
	LivesBefore  int
	LivesAfter   int
	ScoreBefore  int
	ScoreAfter   int
	DangerBefore bool
	DangerAfter  bool
}

func (o EvaderOutcome) ScoreDelta() int {
	return o.ScoreAfter - o.ScoreBefore
}

// EvaderRewards is an ordered cascade. Score thresholds are checked from the
// largest down, so each one should be larger than the next.
type EvaderRewards struct {
	Caught float64 `yaml:"caught" json:"caught"`

	RivalThreshold       int     `yaml:"rival_threshold" json:"rival_threshold"`
	Rival                float64 `yaml:"rival" json:"rival"`
	PowerPelletThreshold int     `yaml:"power_pellet_threshold" json:"power_pellet_threshold"`
	PowerPellet          float64 `yaml:"power_pellet" json:"power_pellet"`
	PelletThreshold      int     `yaml:"pellet_threshold" json:"pellet_threshold"`
	Pellet               float64 `yaml:"pellet" json:"pellet"`

	Escaped float64 `yaml:"escaped" json:"escaped"`
	Idle    float64 `yaml:"idle" json:"idle"`
}

func DefaultEvaderRewards() EvaderRewards {
	return EvaderRewards{
		Caught:               -100,
		RivalThreshold:       200,
		Rival:                10,
		PowerPelletThreshold: 50,
		PowerPellet:          1,
		PelletThreshold:      10,
		Pellet:               5,
		Escaped:              5,
		Idle:                 -0.1,
	}
}

func (r EvaderRewards) Validate() error {
	if !(r.RivalThreshold > r.PowerPelletThreshold && r.PowerPelletThreshold > r.PelletThreshold) {
		return fmt.Errorf("score thresholds must be strictly descending, got %d, %d, %d",
			r.RivalThreshold, r.PowerPelletThreshold, r.PelletThreshold)
	}
	return nil
}

// Classify returns the first matching rule.
func (r EvaderRewards) Classify(o EvaderOutcome) EvaderEvent {
	delta := o.ScoreDelta()
	switch {
	case o.LivesAfter < o.LivesBefore:
		return EvaderCaught
	case delta >= r.RivalThreshold:
		return EvaderAteRival
	case delta >= r.PowerPelletThreshold:
		return EvaderAtePowerPellet
	case delta >= r.PelletThreshold:
		return EvaderAtePellet
	case o.DangerBefore && !o.DangerAfter:
		return EvaderEscaped
	}
	return EvaderIdle
}

func (r EvaderRewards) Value(e EvaderEvent) float64 {
	switch e {
	case EvaderCaught:
		return r.Caught
	case EvaderAteRival:
		return r.Rival
	case EvaderAtePowerPellet:
		return r.PowerPellet
	case EvaderAtePellet:
		return r.Pellet
	case EvaderEscaped:
		return r.Escaped
	}
	return r.Idle
}

func (r EvaderRewards) Reward(o EvaderOutcome) float64 {
	return r.Value(r.Classify(o))
}

// InDanger reports whether any rival is within radius of from, inclusive.
func InDanger(from core.Position, rivals []core.Position, radius int) bool {
	for _, rival := range rivals {
		if from.Manhattan(rival) <= radius {
			return true
		}
	}
	return false
}
