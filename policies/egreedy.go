package policies

import (
	"fmt"
	"time"

	erand "golang.org/x/exp/rand"

	"github.com/zeu5/gridchase-rl/core"
)

// TieBreak decides between legal actions of equal value.
type TieBreak int

const (
	// TieBreakFirst keeps the first action in enumeration order. This biases
	// early actions while the table is mostly zeros.
	TieBreakFirst TieBreak = iota
	// TieBreakRandom picks uniformly among the tied actions.
	TieBreakRandom
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakFirst:
		return "first"
	case TieBreakRandom:
		return "random"
	}
	return fmt.Sprintf("TieBreak(%d)", int(t))
}

func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "first", "":
		return TieBreakFirst, nil
	case "random":
		return TieBreakRandom, nil
	}
	return TieBreakFirst, fmt.Errorf("unknown tie break %q", s)
}

func (t TieBreak) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TieBreak) UnmarshalText(text []byte) error {
	v, err := ParseTieBreak(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// EpsilonGreedy explores with probability Epsilon and otherwise exploits the
// highest valued legal action.
type EpsilonGreedy struct {
	Epsilon  float64
	TieBreak TieBreak

	rand *erand.Rand
}

// NewEpsilonGreedy seeds the policy from seed, or from the clock when seed is 0.
func NewEpsilonGreedy(epsilon float64, tieBreak TieBreak, seed uint64) *EpsilonGreedy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &EpsilonGreedy{
		Epsilon:  epsilon,
		TieBreak: tieBreak,
		rand:     erand.New(erand.NewSource(seed)),
	}
}

// PickAction returns a member of legal, or Stay when legal is empty.
func (p *EpsilonGreedy) PickAction(q *QTable, state core.State, legal []core.Action) core.Action {
	if len(legal) == 0 {
		return core.Stay
	}
	if p.rand.Float64() < p.Epsilon {
		return legal[p.rand.Intn(len(legal))]
	}
	if p.TieBreak == TieBreakRandom {
		best := q.ArgMaxes(state, legal)
		return best[p.rand.Intn(len(best))]
	}
	action, _ := q.MaxAmong(state, legal)
	return action
}

// Rand exposes the policy's generator so that a controller draws all of its
// randomness from one seeded source.
func (p *EpsilonGreedy) Rand() *erand.Rand {
	return p.rand
}
