package gridchase

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/logrusorgru/aurora"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/gridchase-rl/core"
)

const EvaderID = "evader"

func PursuerID(i int) string {
	return fmt.Sprintf("pursuer-%d", i)
}

type WorldConfig struct {
	Layout   string `yaml:"layout" json:"layout"`
	Pursuers int    `yaml:"pursuers" json:"pursuers"`
	Lives    int    `yaml:"lives" json:"lives"`

	PelletScore      int `yaml:"pellet_score" json:"pellet_score"`
	PowerPelletScore int `yaml:"power_pellet_score" json:"power_pellet_score"`
	RivalScore       int `yaml:"rival_score" json:"rival_score"`

	// PowerDuration is the number of ticks a power pellet lasts.
	PowerDuration int `yaml:"power_duration" json:"power_duration"`
	ScatterTicks  int `yaml:"scatter_ticks" json:"scatter_ticks"`
	ChaseTicks    int `yaml:"chase_ticks" json:"chase_ticks"`
	// PhaseJitter weights offsets -k..k added to every phase length.
	PhaseJitter []float64 `yaml:"phase_jitter" json:"phase_jitter"`

	Seed uint64 `yaml:"seed" json:"seed"`
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Layout:           DefaultLayout,
		Pursuers:         4,
		Lives:            3,
		PelletScore:      10,
		PowerPelletScore: 50,
		RivalScore:       200,
		PowerDuration:    30,
		ScatterTicks:     7,
		ChaseTicks:       20,
		PhaseJitter:      []float64{1, 2, 4, 2, 1},
		Seed:             1,
	}
}

type pursuer struct {
	id         string
	pos        core.Position
	facing     core.Direction
	home       core.Position
	scatter    core.Position
	frightened bool
	eaten      bool
}

func (p *pursuer) mode(phase core.Mode) core.Mode {
	switch {
	case p.eaten:
		return core.ModeEaten
	case p.frightened:
		return core.ModeFrightened
	}
	return phase
}

// World is a small pursuit game. Moves are applied as soon as an agent
// requests them, at most one tile per agent per tick. Advance moves the
// clock and the timers.
type World struct {
	config WorldConfig
	layout *Layout

	tick      int
	score     int
	lives     int
	pellets   map[core.Position]bool
	powers    map[core.Position]bool
	evader    core.Position
	facing    core.Direction
	powerLeft int

	pursuers []*pursuer
	byID     map[string]*pursuer
	moved    map[string]bool

	phase     core.Mode
	phaseLeft int
	jitter    sampleuv.Weighted
}

var _ core.World = &World{}

func NewWorld(config WorldConfig) (*World, error) {
	layout, err := ParseLayout(config.Layout)
	if err != nil {
		return nil, err
	}
	if config.Pursuers < 0 {
		return nil, fmt.Errorf("negative pursuer count %d", config.Pursuers)
	}
	w := &World{
		config: config,
		layout: layout,
	}
	if len(config.PhaseJitter) > 0 {
		w.jitter = sampleuv.NewWeighted(config.PhaseJitter, erand.NewSource(config.Seed))
	}
	if err := w.Reset(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) Layout() *Layout {
	return w.layout
}

func (w *World) Reset() error {
	w.tick = 0
	w.score = 0
	w.lives = w.config.Lives
	w.powerLeft = 0
	w.pellets = make(map[core.Position]bool)
	for _, p := range w.layout.Pellets {
		w.pellets[p] = true
	}
	w.powers = make(map[core.Position]bool)
	for _, p := range w.layout.PowerPellets {
		w.powers[p] = true
	}
	w.evader = w.layout.EvaderStart
	w.facing = core.DirLeft

	corners := w.layout.Corners()
	w.pursuers = make([]*pursuer, w.config.Pursuers)
	w.byID = make(map[string]*pursuer)
	for i := range w.pursuers {
		home := w.layout.PursuerHomes[i%len(w.layout.PursuerHomes)]
		p := &pursuer{
			id:      PursuerID(i),
			pos:     home,
			facing:  core.DirUp,
			home:    home,
			scatter: corners[i%len(corners)],
		}
		w.pursuers[i] = p
		w.byID[p.id] = p
	}
	w.moved = make(map[string]bool)
	w.phase = core.ModeScatter
	w.phaseLeft = w.phaseLength(w.config.ScatterTicks)
	return nil
}

// phaseLength draws a jittered duration around base, at least one tick.
func (w *World) phaseLength(base int) int {
	if len(w.config.PhaseJitter) == 0 {
		return max(base, 1)
	}
	idx, ok := w.jitter.Take()
	if !ok {
		return max(base, 1)
	}
	// put the weight back so that draws are with replacement
	w.jitter.Reweight(idx, w.config.PhaseJitter[idx])
	offset := idx - len(w.config.PhaseJitter)/2
	return max(base+offset, 1)
}

func (w *World) Spawns() []core.Spawn {
	out := []core.Spawn{{
		ID:       EvaderID,
		Role:     core.RoleEvader,
		Position: w.layout.EvaderStart,
		Home:     w.layout.EvaderStart,
	}}
	for _, p := range w.pursuers {
		out = append(out, core.Spawn{
			ID:       p.id,
			Role:     core.RolePursuer,
			Position: p.home,
			Home:     p.home,
			Scatter:  p.scatter,
		})
	}
	return out
}

func (w *World) Environment(id string) core.Environment {
	return &agentEnv{world: w, id: id}
}

func (w *World) Advance(_ *core.StepContext) error {
	w.tick++
	w.moved = make(map[string]bool)

	if w.powerLeft > 0 {
		w.powerLeft--
		if w.powerLeft == 0 {
			for _, p := range w.pursuers {
				p.frightened = false
			}
		}
	}
	for _, p := range w.pursuers {
		if p.eaten && p.pos == p.home {
			p.eaten = false
		}
	}
	if w.phaseLeft--; w.phaseLeft <= 0 {
		if w.phase == core.ModeScatter {
			w.phase = core.ModeChase
			w.phaseLeft = w.phaseLength(w.config.ChaseTicks)
		} else {
			w.phase = core.ModeScatter
			w.phaseLeft = w.phaseLength(w.config.ScatterTicks)
		}
	}
	return nil
}

func (w *World) Done() bool {
	return w.lives <= 0 || (len(w.pellets) == 0 && len(w.powers) == 0)
}

func (w *World) Tick() int { return w.tick }

func (w *World) Score() int { return w.score }

func (w *World) Lives() int { return w.lives }

func (w *World) Phase() core.Mode { return w.phase }

// PursuerMode is the mode of pursuer id as seen by its controller.
func (w *World) PursuerMode(id string) core.Mode {
	if p, ok := w.byID[id]; ok {
		return p.mode(w.phase)
	}
	return w.phase
}

func (w *World) move(id string, target core.Position) {
	if w.moved[id] {
		return
	}
	w.moved[id] = true
	if id == EvaderID {
		next, dir := w.layout.NextStep(w.evader, target)
		w.evader = next
		if dir != core.DirNone {
			w.facing = dir
		}
		w.consume()
	} else if p, ok := w.byID[id]; ok {
		next, dir := w.layout.NextStep(p.pos, target)
		p.pos = next
		if dir != core.DirNone {
			p.facing = dir
		}
	}
	w.collide()
}

func (w *World) consume() {
	if w.pellets[w.evader] {
		delete(w.pellets, w.evader)
		w.score += w.config.PelletScore
	}
	if w.powers[w.evader] {
		delete(w.powers, w.evader)
		w.score += w.config.PowerPelletScore
		w.powerLeft = w.config.PowerDuration
		for _, p := range w.pursuers {
			if !p.eaten {
				p.frightened = true
			}
		}
	}
}

func (w *World) collide() {
	for _, p := range w.pursuers {
		if p.pos != w.evader || p.eaten {
			continue
		}
		if p.frightened {
			p.frightened = false
			p.eaten = true
			w.score += w.config.RivalScore
			continue
		}
		w.caught()
		return
	}
}

// caught costs a life and sends everyone back to their start.
func (w *World) caught() {
	w.lives--
	w.evader = w.layout.EvaderStart
	w.powerLeft = 0
	for _, p := range w.pursuers {
		p.pos = p.home
		p.frightened = false
		p.eaten = false
	}
}

func (w *World) withinRange(from core.Position, visualRange int, set map[core.Position]bool) []core.Position {
	out := make([]core.Position, 0)
	for p := range set {
		if from.Manhattan(p) <= visualRange {
			out = append(out, p)
		}
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []core.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

// Render draws the maze. colors selects ANSI colored output.
func (w *World) Render(out io.Writer, colors bool) error {
	au := aurora.NewAurora(colors)
	occupant := make(map[core.Position]aurora.Value)
	for _, p := range w.pursuers {
		switch {
		case p.eaten:
			occupant[p.pos] = au.White("e")
		case p.frightened:
			occupant[p.pos] = au.Cyan("F")
		default:
			occupant[p.pos] = au.Red("G")
		}
	}
	occupant[w.evader] = au.Bold(au.Yellow("P"))

	var b strings.Builder
	fmt.Fprintf(&b, "tick %d score %d lives %d mode %s\n", w.tick, w.score, w.lives, w.phase)
	for y := 0; y < w.layout.Height; y++ {
		for x := 0; x < w.layout.Width; x++ {
			p := core.Position{X: x, Y: y}
			switch {
			case occupant[p] != nil:
				b.WriteString(occupant[p].String())
			case !w.layout.Walkable(p):
				b.WriteString(au.Blue("#").String())
			case w.powers[p]:
				b.WriteString(au.Yellow("o").String())
			case w.pellets[p]:
				b.WriteString(".")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(out, b.String())
	return err
}

type WorldConstructor struct {
	config WorldConfig
}

var _ core.WorldConstructor = &WorldConstructor{}

func NewWorldConstructor(config WorldConfig) (*WorldConstructor, error) {
	if _, err := ParseLayout(config.Layout); err != nil {
		return nil, err
	}
	return &WorldConstructor{config: config}, nil
}

// NewWorld offsets the seed by the instance number so that runs differ.
func (c *WorldConstructor) NewWorld(instance int) core.World {
	config := c.config
	config.Seed += uint64(instance)
	w, err := NewWorld(config)
	if err != nil {
		// the layout was validated by NewWorldConstructor
		panic(err)
	}
	return w
}
