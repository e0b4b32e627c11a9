package gridchase

import (
	"github.com/zeu5/gridchase-rl/core"
)

// agentEnv is the view of the world handed to one controller.
type agentEnv struct {
	world *World
	id    string
}

var _ core.Environment = &agentEnv{}

func (e *agentEnv) isEvader() bool {
	return e.id == EvaderID
}

// ExploreRivals lists the pursuers for the evader and the evader for a
// pursuer.
func (e *agentEnv) ExploreRivals(from core.Position, visualRange int) []core.Position {
	out := make([]core.Position, 0)
	if e.isEvader() {
		for _, p := range e.world.pursuers {
			if from.Manhattan(p.pos) <= visualRange {
				out = append(out, p.pos)
			}
		}
		return out
	}
	if from.Manhattan(e.world.evader) <= visualRange {
		out = append(out, e.world.evader)
	}
	return out
}

func (e *agentEnv) ExplorePellets(from core.Position, visualRange int) []core.Position {
	return e.world.withinRange(from, visualRange, e.world.pellets)
}

func (e *agentEnv) ExplorePowerPellets(from core.Position, visualRange int) []core.Position {
	return e.world.withinRange(from, visualRange, e.world.powers)
}

func (e *agentEnv) ExploreOccupiable(from core.Position, visualRange int) []core.Position {
	out := make([]core.Position, 0)
	for _, p := range e.world.layout.Floor() {
		if from.Manhattan(p) <= visualRange {
			out = append(out, p)
		}
	}
	return out
}

func (e *agentEnv) CurrentTick() int { return e.world.tick }

func (e *agentEnv) Score() int { return e.world.score }

func (e *agentEnv) Lives() int { return e.world.lives }

func (e *agentEnv) Position() core.Position {
	if e.isEvader() {
		return e.world.evader
	}
	if p, ok := e.world.byID[e.id]; ok {
		return p.pos
	}
	return core.Position{}
}

func (e *agentEnv) Facing() core.Direction {
	if e.isEvader() {
		return e.world.facing
	}
	if p, ok := e.world.byID[e.id]; ok {
		return p.facing
	}
	return core.DirNone
}

func (e *agentEnv) PoweredUp() bool { return e.world.powerLeft > 0 }

func (e *agentEnv) PowerTimeLeft() int { return e.world.powerLeft }

func (e *agentEnv) Mode() core.Mode {
	return e.world.PursuerMode(e.id)
}

func (e *agentEnv) MoveTowards(target core.Position) {
	e.world.move(e.id, target)
}
