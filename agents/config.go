package agents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/gridchase-rl/features"
	"github.com/zeu5/gridchase-rl/policies"
	"github.com/zeu5/gridchase-rl/rewards"
)

var ErrNotInitialized = errors.New("controller not initialized")

// NeverSave disables the automatic save at a tick.
const NeverSave = -1

// idPlaceholder in a table path is replaced by the agent id.
const idPlaceholder = "{id}"

type EvaderConfig struct {
	Epsilon  float64           `yaml:"epsilon" json:"epsilon"`
	TieBreak policies.TieBreak `yaml:"tie_break" json:"tie_break"`
	// Seed 0 seeds from the clock.
	Seed uint64 `yaml:"seed" json:"seed"`

	VisualRange  int `yaml:"visual_range" json:"visual_range"`
	DangerRadius int `yaml:"danger_radius" json:"danger_radius"`

	// SaveAtTick saves the table when the host tick equals it. NeverSave
	// leaves saving to explicit Save calls.
	SaveAtTick int             `yaml:"save_at_tick" json:"save_at_tick"`
	TablePath  string          `yaml:"table_path" json:"table_path"`
	Format     policies.Format `yaml:"format" json:"format"`

	QParams policies.QParams       `yaml:"q_params" json:"q_params"`
	Encoder features.EvaderEncoder `yaml:"encoder" json:"encoder"`
	Rewards rewards.EvaderRewards  `yaml:"rewards" json:"rewards"`
}

func DefaultEvaderConfig() EvaderConfig {
	return EvaderConfig{
		Epsilon:      0.7,
		TieBreak:     policies.TieBreakFirst,
		VisualRange:  10,
		DangerRadius: 3,
		SaveAtTick:   NeverSave,
		TablePath:    "qtable.txt",
		Format:       policies.EvaderFormat(),
		QParams:      policies.DefaultQParams(),
		Encoder:      features.DefaultEvaderEncoder(),
		Rewards:      rewards.DefaultEvaderRewards(),
	}
}

func (c EvaderConfig) Validate() error {
	if err := validateCommon(c.Epsilon, c.VisualRange, c.SaveAtTick, c.QParams); err != nil {
		return fmt.Errorf("evader: %w", err)
	}
	if c.DangerRadius < 0 {
		return fmt.Errorf("evader: danger radius must be non-negative, got %d", c.DangerRadius)
	}
	if c.Encoder.DistanceCeiling < 0 {
		return fmt.Errorf("evader: distance ceiling must be non-negative, got %d", c.Encoder.DistanceCeiling)
	}
	if err := c.Rewards.Validate(); err != nil {
		return fmt.Errorf("evader: %w", err)
	}
	return nil
}

type PursuerConfig struct {
	Epsilon  float64           `yaml:"epsilon" json:"epsilon"`
	TieBreak policies.TieBreak `yaml:"tie_break" json:"tie_break"`
	Seed     uint64            `yaml:"seed" json:"seed"`

	VisualRange int `yaml:"visual_range" json:"visual_range"`
	// ReleaseTick is the number of steps, plus one, the pursuer stays in
	// its house at the start of an episode.
	ReleaseTick int `yaml:"release_tick" json:"release_tick"`
	// FrightenedStride skips frightened steps on ticks divisible by it.
	// 0 never skips.
	FrightenedStride int `yaml:"frightened_stride" json:"frightened_stride"`

	SaveAtTick int `yaml:"save_at_tick" json:"save_at_tick"`
	// TablePath may contain {id}, replaced by the agent id.
	TablePath string          `yaml:"table_path" json:"table_path"`
	Format    policies.Format `yaml:"format" json:"format"`

	QParams policies.QParams        `yaml:"q_params" json:"q_params"`
	Encoder features.PursuerEncoder `yaml:"encoder" json:"encoder"`
	Rewards rewards.PursuerRewards  `yaml:"rewards" json:"rewards"`
}

func DefaultPursuerConfig() PursuerConfig {
	return PursuerConfig{
		Epsilon:          0.1,
		TieBreak:         policies.TieBreakFirst,
		VisualRange:      10,
		ReleaseTick:      0,
		FrightenedStride: 2,
		SaveAtTick:       180,
		TablePath:        "ghost_qtable_{id}.csv",
		Format:           policies.PursuerFormat(),
		QParams:          policies.DefaultQParams(),
		Encoder:          features.DefaultPursuerEncoder(),
		Rewards:          rewards.DefaultPursuerRewards(),
	}
}

func (c PursuerConfig) Validate() error {
	if err := validateCommon(c.Epsilon, c.VisualRange, c.SaveAtTick, c.QParams); err != nil {
		return fmt.Errorf("pursuer: %w", err)
	}
	if c.ReleaseTick < 0 {
		return fmt.Errorf("pursuer: release tick must be non-negative, got %d", c.ReleaseTick)
	}
	if c.FrightenedStride < 0 {
		return fmt.Errorf("pursuer: frightened stride must be non-negative, got %d", c.FrightenedStride)
	}
	if c.Encoder.NearBelow > c.Encoder.MediumBelow {
		return fmt.Errorf("pursuer: near bucket (%d) must not exceed medium bucket (%d)", c.Encoder.NearBelow, c.Encoder.MediumBelow)
	}
	return nil
}

// tablePathFor resolves the {id} placeholder.
func tablePathFor(path, id string) string {
	return strings.ReplaceAll(path, idPlaceholder, id)
}

func validateCommon(epsilon float64, visualRange, saveAtTick int, params policies.QParams) error {
	if epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], got %v", epsilon)
	}
	if visualRange <= 0 {
		return fmt.Errorf("visual range must be positive, got %d", visualRange)
	}
	if saveAtTick < NeverSave {
		return fmt.Errorf("save tick must be %d or a tick, got %d", NeverSave, saveAtTick)
	}
	return params.Validate()
}
