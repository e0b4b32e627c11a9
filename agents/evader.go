// Package agents contains the per-agent learning controllers driven by the
// host once per tick.
package agents

import (
	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/features"
	"github.com/zeu5/gridchase-rl/policies"
	"github.com/zeu5/gridchase-rl/rewards"
)

// Evader learns from the immediate consequence of each move.
type Evader struct {
	id     string
	config EvaderConfig
	policy *policies.EpsilonGreedy
	store  *store

	env    core.Environment
	spawn  core.Spawn
	memory EvaderMemory

	log *logrus.Entry
}

var (
	_ core.Controller = &Evader{}
	_ core.Saver      = &Evader{}
	_ core.TableOwner = &Evader{}
)

func NewEvader(id string, config EvaderConfig, logger *logrus.Logger) *Evader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Evader{
		id:     id,
		config: config,
		policy: policies.NewEpsilonGreedy(config.Epsilon, config.TieBreak, config.Seed),
		store: &store{
			table:  policies.NewQTable(core.MoveActions, config.QParams),
			path:   tablePathFor(config.TablePath, id),
			format: config.Format,
			decode: features.ParseEvaderState,
		},
		log: logger.WithFields(logrus.Fields{"agent": id, "role": core.RoleEvader.String()}),
	}
}

// Initialize binds the controller to env. The table is loaded on the first
// call only, the episode memory is cleared on every call.
func (e *Evader) Initialize(ctx *core.InitContext) error {
	e.env = ctx.Env
	e.spawn = ctx.Spawn
	e.ResetMemory()
	return e.store.load(e.log)
}

func (e *Evader) Step(ctx *core.StepContext) (core.Action, error) {
	if e.env == nil {
		return core.NoAction, ErrNotInitialized
	}
	enc := e.config.Encoder
	before := core.Perceive(e.env, e.config.VisualRange)
	dangerBefore := rewards.InDanger(before.Position, before.Rivals, e.config.DangerRadius)
	state := enc.Encode(before)

	action := e.policy.PickAction(e.store.table, state, legalMoves(before))
	e.env.MoveTowards(before.Position.Step(action.Direction()))

	after := core.Perceive(e.env, e.config.VisualRange)
	outcome := rewards.EvaderOutcome{
		LivesBefore:  before.Lives,
		LivesAfter:   after.Lives,
		ScoreBefore:  before.Score,
		ScoreAfter:   after.Score,
		DangerBefore: dangerBefore,
		DangerAfter:  rewards.InDanger(after.Position, after.Rivals, e.config.DangerRadius),
	}
	event := e.config.Rewards.Classify(outcome)
	reward := e.config.Rewards.Value(event)
	next := enc.Encode(after)

	newVal := e.store.table.Update(state, action, reward, next, legalMoves(after))

	e.memory.Steps++
	e.memory.Return += reward
	e.memory.LastEvent = event

	e.log.WithFields(logrus.Fields{
		"tick":   before.Tick,
		"state":  state.Hash(),
		"action": action.String(),
		"event":  event.String(),
		"reward": reward,
		"q":      newVal,
	}).Trace("step")

	if ctx != nil && ctx.EpisodeContext != nil && ctx.Trace != nil {
		ctx.Trace.AddStep(&core.Step{
			Tick:      before.Tick,
			Agent:     e.id,
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: next,
			Misc: map[string]interface{}{
				"event": event.String(),
				"score": after.Score,
				"lives": after.Lives,
			},
		})
	}

	if e.config.SaveAtTick != NeverSave && before.Tick == e.config.SaveAtTick {
		if err := e.Save(); err != nil {
			return action, err
		}
	}
	return action, nil
}

func (e *Evader) Save() error {
	return e.store.save(e.log)
}

func (e *Evader) TablePath() string {
	return e.store.path
}

func (e *Evader) Table() *policies.QTable {
	return e.store.table
}

func (e *Evader) Memory() EvaderMemory {
	return e.memory
}

func (e *Evader) ResetMemory() {
	e.memory = EvaderMemory{}
}

func (e *Evader) Config() EvaderConfig {
	return e.config
}
