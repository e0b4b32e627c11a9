package agents

import (
	"github.com/zeu5/gridchase-rl/core"
)

// legalMoves are the move actions whose neighbouring tile is occupiable.
func legalMoves(p *core.Perception) []core.Action {
	legal := make([]core.Action, 0, len(core.MoveActions))
	for _, a := range core.MoveActions {
		if core.Contains(p.Occupiable, p.Position.Step(a.Direction())) {
			legal = append(legal, a)
		}
	}
	return legal
}

// legalIntents are all intents as soon as the pursuer can move at all.
func legalIntents(p *core.Perception) []core.Action {
	if len(legalMoves(p)) == 0 {
		return []core.Action{}
	}
	out := make([]core.Action, len(core.IntentActions))
	copy(out, core.IntentActions)
	return out
}

// farthestFrom returns the tile of options with the largest Manhattan
// distance to from, the first one on ties.
func farthestFrom(options []core.Position, from core.Position) (core.Position, bool) {
	if len(options) == 0 {
		return core.Position{}, false
	}
	best := options[0]
	bestDist := best.Manhattan(from)
	for _, o := range options[1:] {
		if d := o.Manhattan(from); d > bestDist {
			best = o
			bestDist = d
		}
	}
	return best, true
}
