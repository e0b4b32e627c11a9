package core

import "context"

// Perceiver answers range-limited queries around a tile.
type Perceiver interface {
	ExploreRivals(from Position, visualRange int) []Position
	ExplorePellets(from Position, visualRange int) []Position
	ExplorePowerPellets(from Position, visualRange int) []Position
	ExploreOccupiable(from Position, visualRange int) []Position
}

// Status is the read-only view of simulation counters and of the agent's
// own host-owned fields.
type Status interface {
	CurrentTick() int
	Score() int
	Lives() int
	Position() Position
	Facing() Direction
	PoweredUp() bool
	PowerTimeLeft() int
	Mode() Mode
}

// Environment is the per-agent handle the host passes at initialization.
// MoveTowards only records the desired destination; legality and pathing
// are resolved by the host.
type Environment interface {
	Perceiver
	Status
	MoveTowards(target Position)
}

// Perception is a snapshot of everything a controller reads in one step.
type Perception struct {
	Tick     int
	Position Position
	Facing   Direction

	Rivals       []Position
	Pellets      []Position
	PowerPellets []Position
	Occupiable   []Position

	Score         int
	Lives         int
	PoweredUp     bool
	PowerTimeLeft int
	Mode          Mode
}

// Perceive queries env once for every field of the snapshot.
func Perceive(env Environment, visualRange int) *Perception {
	pos := env.Position()
	return &Perception{
		Tick:     env.CurrentTick(),
		Position: pos,
		Facing:   env.Facing(),

		Rivals:       env.ExploreRivals(pos, visualRange),
		Pellets:      env.ExplorePellets(pos, visualRange),
		PowerPellets: env.ExplorePowerPellets(pos, visualRange),
		Occupiable:   env.ExploreOccupiable(pos, visualRange),

		Score:         env.Score(),
		Lives:         env.Lives(),
		PoweredUp:     env.PoweredUp(),
		PowerTimeLeft: env.PowerTimeLeft(),
		Mode:          env.Mode(),
	}
}

// Ahead is the tile directly in front of the agent.
func (p *Perception) Ahead() Position {
	return p.Position.Step(p.Facing)
}

// Nearest returns the smallest Manhattan distance from the agent to any of
// positions, and false when positions is empty.
func (p *Perception) Nearest(positions []Position) (int, bool) {
	if len(positions) == 0 {
		return 0, false
	}
	best := p.Position.Manhattan(positions[0])
	for _, o := range positions[1:] {
		if d := p.Position.Manhattan(o); d < best {
			best = d
		}
	}
	return best, true
}

// Spawn describes one agent slot of a world.
type Spawn struct {
	ID       string
	Role     Role
	Position Position
	// Home is where an eaten pursuer returns to.
	Home Position
	// Scatter is the pursuer's scatter corner.
	Scatter Position
}

// World is the host simulation driven by the runner.
type World interface {
	Reset() error
	Spawns() []Spawn
	Environment(id string) Environment
	// Advance resolves the tick after every controller has stepped.
	Advance(*StepContext) error
	Done() bool
}

type WorldConstructor interface {
	// NewWorld creates a new world with the given instance number.
	NewWorld(int) World
}

type EpisodeContext struct {
	Context       context.Context
	Episode       int
	Horizon       int
	Run           int
	Experiment    string
	StartTimeStep int

	Trace *Trace
}

func NewEpisodeContext(ctx context.Context) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Trace:   NewTrace(),
	}
}

type StepContext struct {
	Step int
	*EpisodeContext
}

type InitContext struct {
	Context context.Context
	Env     Environment
	Spawn   Spawn
}
