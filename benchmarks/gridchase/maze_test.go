package gridchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/gridchase-rl/core"
)

const smallLayout = `
#######
#P..o.#
#.###.#
#....G#
#######
`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout(smallLayout)
	require.NoError(t, err)
	assert.Equal(t, 7, l.Width)
	assert.Equal(t, 5, l.Height)
	assert.Equal(t, core.Position{X: 1, Y: 1}, l.EvaderStart)
	assert.Equal(t, []core.Position{{X: 5, Y: 3}}, l.PursuerHomes)
	assert.Len(t, l.Pellets, 9)
	assert.Equal(t, []core.Position{{X: 4, Y: 1}}, l.PowerPellets)

	assert.True(t, l.Walkable(core.Position{X: 1, Y: 2}))
	assert.False(t, l.Walkable(core.Position{X: 2, Y: 2}))
	assert.False(t, l.Walkable(core.Position{X: -1, Y: 1}))
	assert.Len(t, l.Floor(), 12)
}

func TestParseDefaultLayout(t *testing.T) {
	l, err := ParseLayout(DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, 15, l.Width)
	assert.Equal(t, 11, l.Height)
	assert.Len(t, l.PursuerHomes, 6)
	assert.Len(t, l.PowerPellets, 4)
}

func TestParseLayoutErrors(t *testing.T) {
	for _, bad := range []string{
		"#P#\n#x#\n#G#",
		"#P#\n#P#\n#G#",
		"#P#\n#.#\n###",
	} {
		_, err := ParseLayout(bad)
		assert.ErrorIs(t, err, ErrBadLayout, bad)
	}
}

func TestCorners(t *testing.T) {
	l, err := ParseLayout(smallLayout)
	require.NoError(t, err)
	assert.Equal(t, []core.Position{
		{X: 1, Y: 1},
		{X: 5, Y: 1},
		{X: 1, Y: 3},
		{X: 5, Y: 3},
	}, l.Corners())
}

func TestNextStep(t *testing.T) {
	l, err := ParseLayout(smallLayout)
	require.NoError(t, err)
	start := core.Position{X: 1, Y: 1}

	next, dir := l.NextStep(start, core.Position{X: 3, Y: 1})
	assert.Equal(t, core.Position{X: 2, Y: 1}, next)
	assert.Equal(t, core.DirRight, dir)

	next, dir = l.NextStep(start, core.Position{X: 1, Y: 3})
	assert.Equal(t, core.Position{X: 1, Y: 2}, next)
	assert.Equal(t, core.DirDown, dir)

	next, dir = l.NextStep(start, core.Position{X: 2, Y: 2})
	assert.Equal(t, start, next, "walls are unreachable")
	assert.Equal(t, core.DirNone, dir)

	next, dir = l.NextStep(start, start)
	assert.Equal(t, start, next)
	assert.Equal(t, core.DirNone, dir)
}
