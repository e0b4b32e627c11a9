package agents

import (
	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/features"
	"github.com/zeu5/gridchase-rl/policies"
)

// Pursuer chooses an intent every active step and credits the previous
// decision with the reward observed when the next one is taken.
type Pursuer struct {
	id     string
	config PursuerConfig
	policy *policies.EpsilonGreedy
	store  *store

	env    core.Environment
	spawn  core.Spawn
	memory PursuerMemory

	log *logrus.Entry
}

var (
	_ core.Controller = &Pursuer{}
	_ core.Saver      = &Pursuer{}
	_ core.TableOwner = &Pursuer{}
)

func NewPursuer(id string, config PursuerConfig, logger *logrus.Logger) *Pursuer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pursuer{
		id:     id,
		config: config,
		policy: policies.NewEpsilonGreedy(config.Epsilon, config.TieBreak, config.Seed),
		store: &store{
			table:  policies.NewQTable(core.IntentActions, config.QParams),
			path:   tablePathFor(config.TablePath, id),
			format: config.Format,
			decode: features.ParsePursuerState,
		},
		log: logger.WithFields(logrus.Fields{"agent": id, "role": core.RolePursuer.String()}),
	}
}

func (p *Pursuer) Initialize(ctx *core.InitContext) error {
	p.env = ctx.Env
	p.spawn = ctx.Spawn
	p.ResetMemory()
	return p.store.load(p.log)
}

// Step gates the decision on the pursuer's situation. Gated steps return
// NoAction and leave the table and the pending transition alone.
func (p *Pursuer) Step(ctx *core.StepContext) (core.Action, error) {
	if p.env == nil {
		return core.NoAction, ErrNotInitialized
	}
	if p.memory.ReleaseTimer <= p.config.ReleaseTick {
		p.memory.ReleaseTimer++
		return core.NoAction, nil
	}
	tick := p.env.CurrentTick()
	switch p.env.Mode() {
	case core.ModeFrightened:
		if p.config.FrightenedStride > 0 && tick%p.config.FrightenedStride == 0 {
			return core.NoAction, nil
		}
	case core.ModeEaten:
		p.env.MoveTowards(p.spawn.Home)
		return core.NoAction, nil
	}

	action, err := p.active(ctx)
	if err != nil {
		return action, err
	}
	if p.config.SaveAtTick != NeverSave && tick == p.config.SaveAtTick {
		if err := p.Save(); err != nil {
			return action, err
		}
	}
	return action, nil
}

func (p *Pursuer) active(ctx *core.StepContext) (core.Action, error) {
	perception := core.Perceive(p.env, p.config.VisualRange)
	state := p.config.Encoder.Encode(perception)
	legal := legalIntents(perception)
	action := p.policy.PickAction(p.store.table, state, legal)

	p.env.MoveTowards(p.resolveTarget(action, perception))

	reward := p.config.Rewards.Reward(perception.Mode, state.SeesEvader)
	if pending := p.memory.Pending; pending != nil {
		newVal := p.store.table.Update(pending.State, pending.Action, reward, state, legal)
		p.memory.Updates++
		p.memory.Return += reward

		p.log.WithFields(logrus.Fields{
			"tick":   perception.Tick,
			"state":  pending.State.Hash(),
			"action": pending.Action.String(),
			"reward": reward,
			"q":      newVal,
		}).Trace("update")

		if ctx != nil && ctx.EpisodeContext != nil && ctx.Trace != nil {
			ctx.Trace.AddStep(&core.Step{
				Tick:      perception.Tick,
				Agent:     p.id,
				State:     pending.State,
				Action:    pending.Action,
				Reward:    reward,
				NextState: state,
				Misc: map[string]interface{}{
					"mode": perception.Mode.String(),
				},
			})
		}
	}
	p.memory.Pending = &Transition{State: state, Action: action}
	return action, nil
}

// resolveTarget turns an intent into a destination tile.
func (p *Pursuer) resolveTarget(action core.Action, perception *core.Perception) core.Position {
	evaderSeen := len(perception.Rivals) > 0
	switch action {
	case core.Chase:
		if evaderSeen {
			return perception.Rivals[0]
		}
	case core.Flee:
		if evaderSeen {
			if target, ok := farthestFrom(perception.Occupiable, perception.Rivals[0]); ok {
				return target
			}
		}
	case core.Scatter:
		return p.spawn.Scatter
	}
	return p.randomTile(perception)
}

func (p *Pursuer) randomTile(perception *core.Perception) core.Position {
	if len(perception.Occupiable) == 0 {
		return perception.Position
	}
	return perception.Occupiable[p.policy.Rand().Intn(len(perception.Occupiable))]
}

func (p *Pursuer) Save() error {
	return p.store.save(p.log)
}

func (p *Pursuer) TablePath() string {
	return p.store.path
}

func (p *Pursuer) Table() *policies.QTable {
	return p.store.table
}

func (p *Pursuer) Memory() PursuerMemory {
	return p.memory
}

func (p *Pursuer) ResetMemory() {
	p.memory = PursuerMemory{}
}

func (p *Pursuer) Config() PursuerConfig {
	return p.config
}
