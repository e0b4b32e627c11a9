// Package features encodes perception snapshots into discrete state keys.
//
// Keys are small comparable structs so that the value table can hash them by
// value. Hash renders the persisted form and the Parse functions invert it.
package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeu5/gridchase-rl/core"
)

var ErrMalformedState = errors.New("malformed state")

const (
	DefaultDistanceCeiling = 5
	// DefaultUnseenDistance is used for a feature whose object is not visible,
	// before clipping.
	DefaultUnseenDistance = 10
)

// EvaderState is the evader's view of the world.
type EvaderState struct {
	Facing              core.Direction
	RivalAhead          bool
	PelletAhead         bool
	PowerPelletAhead    bool
	RivalDistance       int
	PowerPelletDistance int
	PoweredUp           bool

	// Score is only meaningful when ScoreIncluded is set.
	Score         int
	ScoreIncluded bool
}

var _ core.State = EvaderState{}

func (s EvaderState) Hash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "D:%s_G:%s_P:%s_PPF:%s_DG:%d_DPP:%d_PU:%s",
		s.Facing, formatBool(s.RivalAhead), formatBool(s.PelletAhead), formatBool(s.PowerPelletAhead),
		s.RivalDistance, s.PowerPelletDistance, formatBool(s.PoweredUp))
	if s.ScoreIncluded {
		fmt.Fprintf(&b, "_S:%d", s.Score)
	}
	return b.String()
}

func (s EvaderState) String() string {
	return s.Hash()
}

// EvaderEncoder builds EvaderState values.
//
// IncludeScore adds the raw cumulative score to the key. The score grows
// without bound over an episode, so every step lands in a state that has
// never been seen before and nothing learned is reused. Leave it off unless
// reproducing tables trained that way.
type EvaderEncoder struct {
	DistanceCeiling int  `yaml:"distance_ceiling" json:"distance_ceiling"`
	UnseenDistance  int  `yaml:"unseen_distance" json:"unseen_distance"`
	IncludeScore    bool `yaml:"include_score" json:"include_score"`
}

func DefaultEvaderEncoder() EvaderEncoder {
	return EvaderEncoder{
		DistanceCeiling: DefaultDistanceCeiling,
		UnseenDistance:  DefaultUnseenDistance,
	}
}

func (e EvaderEncoder) Encode(p *core.Perception) EvaderState {
	ahead := p.Ahead()
	s := EvaderState{
		Facing:              p.Facing,
		RivalAhead:          core.Contains(p.Rivals, ahead),
		PelletAhead:         core.Contains(p.Pellets, ahead),
		PowerPelletAhead:    core.Contains(p.PowerPellets, ahead),
		RivalDistance:       e.clip(p.Nearest(p.Rivals)),
		PowerPelletDistance: e.clip(p.Nearest(p.PowerPellets)),
		PoweredUp:           p.PoweredUp,
	}
	if e.IncludeScore {
		s.Score = p.Score
		s.ScoreIncluded = true
	}
	return s
}

func (e EvaderEncoder) clip(d int, seen bool) int {
	if !seen {
		d = e.UnseenDistance
	}
	if d > e.DistanceCeiling {
		d = e.DistanceCeiling
	}
	return d
}

// ParseEvaderState inverts EvaderState.Hash.
func ParseEvaderState(s string) (core.State, error) {
	fields := strings.Split(s, "_")
	if len(fields) != 7 && len(fields) != 8 {
		return nil, fmt.Errorf("%w: %q has %d fields", ErrMalformedState, s, len(fields))
	}
	values, err := splitFields(fields)
	if err != nil {
		return nil, err
	}
	if _, ok := values["S"]; len(fields) == 8 && !ok {
		return nil, fmt.Errorf("%w: %q has 8 fields but no S", ErrMalformedState, s)
	}

	var out EvaderState
	if out.Facing, err = core.ParseDirection(values["D"]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedState, err)
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{"G", &out.RivalAhead},
		{"P", &out.PelletAhead},
		{"PPF", &out.PowerPelletAhead},
		{"PU", &out.PoweredUp},
	}
	for _, b := range bools {
		if *b.dst, err = parseBool(values[b.key]); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrMalformedState, b.key, err)
		}
	}
	if out.RivalDistance, err = strconv.Atoi(values["DG"]); err != nil {
		return nil, fmt.Errorf("%w: DG: %s", ErrMalformedState, err)
	}
	if out.PowerPelletDistance, err = strconv.Atoi(values["DPP"]); err != nil {
		return nil, fmt.Errorf("%w: DPP: %s", ErrMalformedState, err)
	}
	if score, ok := values["S"]; ok {
		if out.Score, err = strconv.Atoi(score); err != nil {
			return nil, fmt.Errorf("%w: S: %s", ErrMalformedState, err)
		}
		out.ScoreIncluded = true
	}
	return out, nil
}

// splitFields turns key:value fields into a map. A repeated key is an error.
func splitFields(fields []string) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrMalformedState, f)
		}
		if _, dup := values[k]; dup {
			return nil, fmt.Errorf("%w: repeated key %q", ErrMalformedState, k)
		}
		values[k] = v
	}
	return values, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(s))
}
