package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownMode      = errors.New("unknown mode")
)

// Position is a tile coordinate. Y grows downwards.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Step returns the neighbouring tile in direction d. DirNone returns p.
func (p Position) Step(d Direction) Position {
	switch d {
	case DirUp:
		return Position{X: p.X, Y: p.Y - 1}
	case DirDown:
		return Position{X: p.X, Y: p.Y + 1}
	case DirLeft:
		return Position{X: p.X - 1, Y: p.Y}
	case DirRight:
		return Position{X: p.X + 1, Y: p.Y}
	}
	return p
}

// Manhattan distance between two tiles
func (p Position) Manhattan(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Contains reports whether target is one of positions.
func Contains(positions []Position, target Position) bool {
	for _, p := range positions {
		if p == target {
			return true
		}
	}
	return false
}

type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

var directionNames = map[Direction]string{
	DirNone:  "None",
	DirUp:    "Up",
	DirDown:  "Down",
	DirLeft:  "Left",
	DirRight: "Right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Action is the closed set of decisions a controller can take. Move actions
// are resolved directly to a neighbouring tile, intent actions are resolved to
// a destination tile by the pursuer.
type Action int

const (
	// NoAction is returned by steps that took no decision.
	NoAction Action = iota
	Up
	Down
	Left
	Right
	Stay
	Chase
	Flee
	Scatter
	Random
)

var (
	// MoveActions is the static enumeration used by the evader.
	MoveActions = []Action{Up, Down, Left, Right}
	// IntentActions is the static enumeration used by pursuers.
	IntentActions = []Action{Chase, Flee, Scatter, Random}
)

var actionNames = map[Action]string{
	NoAction: "None",
	Up:       "Up",
	Down:     "Down",
	Left:     "Left",
	Right:    "Right",
	Stay:     "Stay",
	Chase:    "chase",
	Flee:     "flee",
	Scatter:  "scatter",
	Random:   "random",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) Hash() string {
	return a.String()
}

// Direction maps a move action to its direction. Any other action maps to DirNone.
func (a Action) Direction() Direction {
	switch a {
	case Up:
		return DirUp
	case Down:
		return DirDown
	case Left:
		return DirLeft
	case Right:
		return DirRight
	}
	return DirNone
}

// ParseAction is case insensitive so that tables written with either
// capitalisation load into the same keys.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for a, name := range actionNames {
		if a == NoAction {
			continue
		}
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return NoAction, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Mode is the pursuer status set by the host.
type Mode int

const (
	ModeChase Mode = iota
	ModeScatter
	ModeFrightened
	ModeEaten
)

var modeNames = map[Mode]string{
	ModeChase:      "Chase",
	ModeScatter:    "Scatter",
	ModeFrightened: "Frightened",
	ModeEaten:      "Eaten",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return ModeChase, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type Role int

const (
	RoleEvader Role = iota
	RolePursuer
)

func (r Role) String() string {
	switch r {
	case RoleEvader:
		return "evader"
	case RolePursuer:
		return "pursuer"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// State is a discrete state key. Implementations must be comparable values:
// they are used directly as map keys. Hash is the persisted form.
type State interface {
	Hash() string
}
