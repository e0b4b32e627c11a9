package policies

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeu5/gridchase-rl/core"
)

func TestPickActionEmptyLegalStays(t *testing.T) {
	q := NewQTable(core.MoveActions, DefaultQParams())
	p := NewEpsilonGreedy(0.5, TieBreakFirst, 1)

	assert.Equal(t, core.Stay, p.PickAction(q, testState{0}, nil))
	assert.Equal(t, 0, q.Len())
}

func TestPickActionGreedyIsDeterministic(t *testing.T) {
	q := NewQTable(core.MoveActions, DefaultQParams())
	s := testState{0}
	q.Set(s, core.Down, 1)
	q.Set(s, core.Right, 3)
	legal := []core.Action{core.Up, core.Down, core.Left}

	p := NewEpsilonGreedy(0, TieBreakFirst, 7)
	for i := 0; i < 100; i++ {
		require.Equal(t, core.Down, p.PickAction(q, s, legal), "illegal best action must not be picked")
	}
}

func TestPickActionTieBreaks(t *testing.T) {
	q := NewQTable(core.MoveActions, DefaultQParams())
	s := testState{0}
	q.Set(s, core.Left, -1)

	first := NewEpsilonGreedy(0, TieBreakFirst, 3)
	for i := 0; i < 50; i++ {
		require.Equal(t, core.Up, first.PickAction(q, s, core.MoveActions))
	}

	random := NewEpsilonGreedy(0, TieBreakRandom, 3)
	seen := make(map[core.Action]int)
	for i := 0; i < 600; i++ {
		seen[random.PickAction(q, s, core.MoveActions)]++
	}
	assert.Zero(t, seen[core.Left])
	for _, a := range []core.Action{core.Up, core.Down, core.Right} {
		assert.Greater(t, seen[a], 100, "action %s", a)
	}
}

func TestPickActionStaysLegalWithIncomparableValues(t *testing.T) {
	q := NewQTable(core.MoveActions, DefaultQParams())
	s := testState{0}
	for _, a := range core.MoveActions {
		q.Set(s, a, math.NaN())
	}
	legal := []core.Action{core.Left, core.Up}

	for _, tb := range []TieBreak{TieBreakFirst, TieBreakRandom} {
		p := NewEpsilonGreedy(0, tb, 5)
		for i := 0; i < 20; i++ {
			require.Equal(t, core.Left, p.PickAction(q, s, legal))
		}
	}
}

func TestPickActionExploresUniformly(t *testing.T) {
	q := NewQTable(core.MoveActions, DefaultQParams())
	s := testState{0}
	q.Set(s, core.Up, 100)

	p := NewEpsilonGreedy(1, TieBreakFirst, 42)
	const trials = 10000
	counts := make(map[core.Action]float64)
	for i := 0; i < trials; i++ {
		a := p.PickAction(q, s, core.MoveActions)
		require.Contains(t, core.MoveActions, a)
		counts[a]++
	}

	obs := make([]float64, len(core.MoveActions))
	exp := make([]float64, len(core.MoveActions))
	for i, a := range core.MoveActions {
		obs[i] = counts[a]
		exp[i] = trials / float64(len(core.MoveActions))
	}
	chi := stat.ChiSquare(obs, exp)
	pValue := distuv.ChiSquared{K: float64(len(obs) - 1)}.Survival(chi)
	assert.Greater(t, pValue, 0.001, "chi square %v", chi)
}

func TestTieBreakText(t *testing.T) {
	var tb TieBreak
	require.NoError(t, tb.UnmarshalText([]byte("random")))
	assert.Equal(t, TieBreakRandom, tb)
	b, err := tb.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "random", string(b))
	assert.Error(t, tb.UnmarshalText([]byte("last")))
}
