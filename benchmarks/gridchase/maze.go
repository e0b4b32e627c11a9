package gridchase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/gridchase-rl/core"
)

var ErrBadLayout = errors.New("bad layout")

// DefaultLayout is a small symmetric maze with four pursuer houses.
//
//	#  wall
//	.  pellet
//	o  power pellet
//	P  evader start
//	G  pursuer start and home
const DefaultLayout = `
###############
#o....#.#....o#
#.##..#.#..##.#
#.............#
#.##.#GGG#.##.#
#....#GGG#....#
#.##.#####.##.#
#......P......#
#.##.##.##.##.#
#o.....#.....o#
###############
`

// Layout is a parsed maze.
type Layout struct {
	Width  int
	Height int

	walls        map[core.Position]bool
	Pellets      []core.Position
	PowerPellets []core.Position
	EvaderStart  core.Position
	PursuerHomes []core.Position
}

// ParseLayout reads an ASCII maze. Blank leading and trailing lines are
// ignored and short rows are padded with walls.
func ParseLayout(s string) (*Layout, error) {
	rows := strings.Split(strings.Trim(s, "\n"), "\n")
	l := &Layout{
		Height:       len(rows),
		walls:        make(map[core.Position]bool),
		Pellets:      make([]core.Position, 0),
		PowerPellets: make([]core.Position, 0),
		PursuerHomes: make([]core.Position, 0),
	}
	for _, row := range rows {
		if len(row) > l.Width {
			l.Width = len(row)
		}
	}
	evaders := 0
	for y, row := range rows {
		row = strings.TrimRight(row, "\r")
		for x := 0; x < l.Width; x++ {
			p := core.Position{X: x, Y: y}
			c := byte('#')
			if x < len(row) {
				c = row[x]
			}
			switch c {
			case '#':
				l.walls[p] = true
			case '.':
				l.Pellets = append(l.Pellets, p)
			case 'o':
				l.PowerPellets = append(l.PowerPellets, p)
			case 'P':
				l.EvaderStart = p
				evaders++
			case 'G':
				l.PursuerHomes = append(l.PursuerHomes, p)
			case ' ':
			default:
				return nil, fmt.Errorf("%w: unknown tile %q at %s", ErrBadLayout, c, p)
			}
		}
	}
	if evaders != 1 {
		return nil, fmt.Errorf("%w: need exactly one evader start, got %d", ErrBadLayout, evaders)
	}
	if len(l.PursuerHomes) == 0 {
		return nil, fmt.Errorf("%w: no pursuer start", ErrBadLayout)
	}
	return l, nil
}

func (l *Layout) InBounds(p core.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.Width && p.Y < l.Height
}

func (l *Layout) Walkable(p core.Position) bool {
	return l.InBounds(p) && !l.walls[p]
}

// Floor lists every walkable tile in row major order.
func (l *Layout) Floor() []core.Position {
	out := make([]core.Position, 0)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if p := (core.Position{X: x, Y: y}); l.Walkable(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Corners returns the walkable tiles nearest to the top left, top right,
// bottom left and bottom right corners.
func (l *Layout) Corners() []core.Position {
	targets := []core.Position{
		{X: 0, Y: 0},
		{X: l.Width - 1, Y: 0},
		{X: 0, Y: l.Height - 1},
		{X: l.Width - 1, Y: l.Height - 1},
	}
	floor := l.Floor()
	out := make([]core.Position, len(targets))
	for i, t := range targets {
		best := floor[0]
		for _, p := range floor[1:] {
			if p.Manhattan(t) < best.Manhattan(t) {
				best = p
			}
		}
		out[i] = best
	}
	return out
}

// NextStep is the first tile on a shortest path from from to to. It returns
// from when to is unreachable or equal to from.
func (l *Layout) NextStep(from, to core.Position) (core.Position, core.Direction) {
	if from == to || !l.Walkable(to) {
		return from, core.DirNone
	}
	dirs := []core.Direction{core.DirUp, core.DirDown, core.DirLeft, core.DirRight}
	parent := map[core.Position]core.Position{from: from}
	queue := []core.Position{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, d := range dirs {
			n := cur.Step(d)
			if _, seen := parent[n]; seen || !l.Walkable(n) {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	if _, ok := parent[to]; !ok {
		return from, core.DirNone
	}
	step := to
	for parent[step] != from {
		step = parent[step]
	}
	for _, d := range dirs {
		if from.Step(d) == step {
			return step, d
		}
	}
	return from, core.DirNone
}
