package features

import (
	"fmt"
	"strings"

	"github.com/zeu5/gridchase-rl/core"
)

// DistanceBucket is a coarse distance to the evader.
type DistanceBucket int

const (
	DistanceUnknown DistanceBucket = iota
	DistanceNear
	DistanceMedium
	DistanceFar
)

var bucketNames = map[DistanceBucket]string{
	DistanceUnknown: "unknown",
	DistanceNear:    "near",
	DistanceMedium:  "medium",
	DistanceFar:     "far",
}

func (d DistanceBucket) String() string {
	if name, ok := bucketNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DistanceBucket(%d)", int(d))
}

func parseBucket(s string) (DistanceBucket, error) {
	for b, name := range bucketNames {
		if name == strings.ToLower(s) {
			return b, nil
		}
	}
	return DistanceUnknown, fmt.Errorf("%w: distance %q", ErrMalformedState, s)
}

type PursuerState struct {
	Mode       core.Mode
	SeesEvader bool
	Distance   DistanceBucket
}

var _ core.State = PursuerState{}

func (s PursuerState) Hash() string {
	return fmt.Sprintf("sees:%s;mode:%s;distance:%s", formatBool(s.SeesEvader), s.Mode, s.Distance)
}

func (s PursuerState) String() string {
	return s.Hash()
}

type PursuerEncoder struct {
	// Distances strictly below NearBelow are near, below MediumBelow medium.
	NearBelow   int `yaml:"near_below" json:"near_below"`
	MediumBelow int `yaml:"medium_below" json:"medium_below"`
}

func DefaultPursuerEncoder() PursuerEncoder {
	return PursuerEncoder{NearBelow: 3, MediumBelow: 6}
}

// Encode uses the first visible rival as the evader.
func (e PursuerEncoder) Encode(p *core.Perception) PursuerState {
	s := PursuerState{Mode: p.Mode}
	if len(p.Rivals) == 0 {
		return s
	}
	s.SeesEvader = true
	s.Distance = e.Bucket(p.Position.Manhattan(p.Rivals[0]))
	return s
}

func (e PursuerEncoder) Bucket(d int) DistanceBucket {
	switch {
	case d < e.NearBelow:
		return DistanceNear
	case d < e.MediumBelow:
		return DistanceMedium
	}
	return DistanceFar
}

// ParsePursuerState inverts PursuerState.Hash.
func ParsePursuerState(s string) (core.State, error) {
	fields := strings.Split(s, ";")
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: %q has %d fields", ErrMalformedState, s, len(fields))
	}
	values, err := splitFields(fields)
	if err != nil {
		return nil, err
	}
	var out PursuerState
	if out.SeesEvader, err = parseBool(values["sees"]); err != nil {
		return nil, fmt.Errorf("%w: sees: %s", ErrMalformedState, err)
	}
	if out.Mode, err = core.ParseMode(values["mode"]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedState, err)
	}
	if out.Distance, err = parseBucket(values["distance"]); err != nil {
		return nil, err
	}
	return out, nil
}
