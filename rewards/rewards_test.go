package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeu5/gridchase-rl/core"
)

func TestEvaderCascade(t *testing.T) {
	r := DefaultEvaderRewards()
	cases := []struct {
		name    string
		outcome EvaderOutcome
		event   EvaderEvent
		reward  float64
	}{
		{
			name:    "caught wins over score",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 2, ScoreAfter: 500},
			event:   EvaderCaught,
			reward:  -100,
		},
		{
			name:    "rival",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, ScoreBefore: 100, ScoreAfter: 350},
			event:   EvaderAteRival,
			reward:  10,
		},
		{
			name:    "power pellet",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, ScoreAfter: 50},
			event:   EvaderAtePowerPellet,
			reward:  1,
		},
		{
			name:    "pellet",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, ScoreAfter: 10},
			event:   EvaderAtePellet,
			reward:  5,
		},
		{
			name:    "pellet wins over escape",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, ScoreAfter: 10, DangerBefore: true},
			event:   EvaderAtePellet,
			reward:  5,
		},
		{
			name:    "escaped",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, DangerBefore: true},
			event:   EvaderEscaped,
			reward:  5,
		},
		{
			name:    "still in danger",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, DangerBefore: true, DangerAfter: true},
			event:   EvaderIdle,
			reward:  -0.1,
		},
		{
			name:    "small score change",
			outcome: EvaderOutcome{LivesBefore: 3, LivesAfter: 3, ScoreBefore: 10, ScoreAfter: 19},
			event:   EvaderIdle,
			reward:  -0.1,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.event, r.Classify(c.outcome))
			assert.Equal(t, c.reward, r.Reward(c.outcome))
		})
	}
}

func TestEvaderRewardsValidate(t *testing.T) {
	assert.NoError(t, DefaultEvaderRewards().Validate())

	r := DefaultEvaderRewards()
	r.PelletThreshold = 50
	assert.Error(t, r.Validate())
}

func TestInDanger(t *testing.T) {
	from := core.Position{X: 0, Y: 0}
	assert.False(t, InDanger(from, nil, 3))
	assert.True(t, InDanger(from, []core.Position{{X: 2, Y: 1}}, 3), "radius is inclusive")
	assert.False(t, InDanger(from, []core.Position{{X: 2, Y: 2}}, 3))
	assert.True(t, InDanger(from, []core.Position{{X: 9, Y: 9}, {X: 0, Y: 1}}, 3))
}

func TestPursuerRewards(t *testing.T) {
	r := DefaultPursuerRewards()
	cases := []struct {
		mode   core.Mode
		sees   bool
		event  PursuerEvent
		reward float64
	}{
		{core.ModeEaten, true, PursuerEaten, -100},
		{core.ModeFrightened, true, PursuerFrightened, -1},
		{core.ModeFrightened, false, PursuerFrightened, -1},
		{core.ModeChase, true, PursuerChasing, 10},
		{core.ModeChase, false, PursuerIdle, 0},
		{core.ModeScatter, true, PursuerIdle, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.event, r.Classify(c.mode, c.sees), "%s sees=%v", c.mode, c.sees)
		assert.Equal(t, c.reward, r.Reward(c.mode, c.sees), "%s sees=%v", c.mode, c.sees)
	}
}

func TestEventNames(t *testing.T) {
	assert.Equal(t, "ate_power_pellet", EvaderAtePowerPellet.String())
	assert.Equal(t, "chasing", PursuerChasing.String())
}
