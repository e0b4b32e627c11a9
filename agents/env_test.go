package agents

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/core"
)

// fakeEnv is a scripted environment. Every Explore call is counted and
// every requested destination is recorded.
type fakeEnv struct {
	tick   int
	score  int
	lives  int
	pos    core.Position
	facing core.Direction
	power  bool
	mode   core.Mode

	rivals       []core.Position
	pellets      []core.Position
	powerPellets []core.Position
	occupiable   []core.Position

	explores int
	moves    []core.Position
	onMove   func(*fakeEnv, core.Position)
}

var _ core.Environment = &fakeEnv{}

func newFakeEnv(pos core.Position) *fakeEnv {
	return &fakeEnv{
		lives:  3,
		pos:    pos,
		facing: core.DirRight,
		occupiable: []core.Position{
			pos.Step(core.DirUp),
			pos.Step(core.DirDown),
			pos.Step(core.DirLeft),
			pos.Step(core.DirRight),
		},
	}
}

func (f *fakeEnv) ExploreRivals(core.Position, int) []core.Position {
	f.explores++
	return f.rivals
}

func (f *fakeEnv) ExplorePellets(core.Position, int) []core.Position {
	f.explores++
	return f.pellets
}

func (f *fakeEnv) ExplorePowerPellets(core.Position, int) []core.Position {
	f.explores++
	return f.powerPellets
}

func (f *fakeEnv) ExploreOccupiable(core.Position, int) []core.Position {
	f.explores++
	return f.occupiable
}

func (f *fakeEnv) CurrentTick() int { return f.tick }
func (f *fakeEnv) Score() int { return f.score }
func (f *fakeEnv) Lives() int { return f.lives }
func (f *fakeEnv) Position() core.Position { return f.pos }
func (f *fakeEnv) Facing() core.Direction { return f.facing }
func (f *fakeEnv) PoweredUp() bool { return f.power }
func (f *fakeEnv) PowerTimeLeft() int { return 0 }
func (f *fakeEnv) Mode() core.Mode { return f.mode }

func (f *fakeEnv) MoveTowards(target core.Position) {
	f.moves = append(f.moves, target)
	if f.onMove != nil {
		f.onMove(f, target)
	}
}

func (f *fakeEnv) lastMove() (core.Position, bool) {
	if len(f.moves) == 0 {
		return core.Position{}, false
	}
	return f.moves[len(f.moves)-1], true
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
