package policies

import (
	"fmt"
	"math"
	"sort"

	"github.com/zeu5/gridchase-rl/core"
)

// BootstrapMode selects which actions the max over the next state ranges over.
type BootstrapMode int

const (
	// BootstrapAllActions takes the max over the table's full static action
	// enumeration, including actions that were illegal at the next state.
	BootstrapAllActions BootstrapMode = iota
	// BootstrapLegalActions takes the max over the actions legal at the next
	// state only. No legal actions bootstraps from 0.
	BootstrapLegalActions
)

func (b BootstrapMode) String() string {
	switch b {
	case BootstrapAllActions:
		return "all"
	case BootstrapLegalActions:
		return "legal"
	}
	return fmt.Sprintf("BootstrapMode(%d)", int(b))
}

func ParseBootstrapMode(s string) (BootstrapMode, error) {
	switch s {
	case "all", "":
		return BootstrapAllActions, nil
	case "legal":
		return BootstrapLegalActions, nil
	}
	return BootstrapAllActions, fmt.Errorf("unknown bootstrap mode %q", s)
}

func (b BootstrapMode) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BootstrapMode) UnmarshalText(text []byte) error {
	m, err := ParseBootstrapMode(string(text))
	if err != nil {
		return err
	}
	*b = m
	return nil
}

// QParams are the learning constants of a table.
type QParams struct {
	Alpha     float64       `yaml:"alpha" json:"alpha"`
	Gamma     float64       `yaml:"gamma" json:"gamma"`
	Bootstrap BootstrapMode `yaml:"bootstrap" json:"bootstrap"`
}

func DefaultQParams() QParams {
	return QParams{Alpha: 0.1, Gamma: 0.9, Bootstrap: BootstrapAllActions}
}

func (p QParams) Validate() error {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %v", p.Alpha)
	}
	if p.Gamma < 0 || p.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], got %v", p.Gamma)
	}
	return nil
}

type stateAction struct {
	state  core.State
	action core.Action
}

// QTable is a sparse (state, action) -> value store. Missing entries read as
// 0 and reads never create entries.
type QTable struct {
	table   map[stateAction]float64
	actions []core.Action
	params  QParams
}

// NewQTable creates an empty table over the static action enumeration actions.
func NewQTable(actions []core.Action, params QParams) *QTable {
	acts := make([]core.Action, len(actions))
	copy(acts, actions)
	return &QTable{
		table:   make(map[stateAction]float64),
		actions: acts,
		params:  params,
	}
}

func (q *QTable) Params() QParams {
	return q.params
}

func (q *QTable) Actions() []core.Action {
	out := make([]core.Action, len(q.actions))
	copy(out, q.actions)
	return out
}

func (q *QTable) Get(state core.State, action core.Action) float64 {
	return q.table[stateAction{state, action}]
}

// Lookup is Get that also reports whether the entry exists.
func (q *QTable) Lookup(state core.State, action core.Action) (float64, bool) {
	v, ok := q.table[stateAction{state, action}]
	return v, ok
}

func (q *QTable) Set(state core.State, action core.Action, val float64) {
	q.table[stateAction{state, action}] = val
}

// Max returns the best action of the static enumeration at state. Ties go to
// the earliest action.
func (q *QTable) Max(state core.State) (core.Action, float64) {
	return q.MaxAmong(state, q.actions)
}

// MaxAmong returns the best of actions at state, earliest first on ties.
// An empty actions slice returns (NoAction, 0). When no value compares, as
// with NaN entries, the first action is returned.
func (q *QTable) MaxAmong(state core.State, actions []core.Action) (core.Action, float64) {
	if len(actions) == 0 {
		return core.NoAction, 0
	}
	maxAction := core.NoAction
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if val := q.Get(state, a); val > maxVal {
			maxAction = a
			maxVal = val
		}
	}
	if maxAction == core.NoAction {
		return actions[0], q.Get(state, actions[0])
	}
	return maxAction, maxVal
}

// ArgMaxes returns every action of actions that attains the maximum value,
// in the order given.
func (q *QTable) ArgMaxes(state core.State, actions []core.Action) []core.Action {
	best := make([]core.Action, 0, len(actions))
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a)
		if val > maxVal {
			best = best[:0]
			maxVal = val
		}
		if val == maxVal {
			best = append(best, a)
		}
	}
	if len(best) == 0 && len(actions) > 0 {
		best = append(best, actions[0])
	}
	return best
}

// Update applies one Bellman backup to (state, action) and returns the new
// value:
//
//	Q(s,a) <- Q(s,a) + alpha * (reward + gamma * max Q(next, a') - Q(s,a))
//
// nextLegal is only read with BootstrapLegalActions.
func (q *QTable) Update(state core.State, action core.Action, reward float64, next core.State, nextLegal []core.Action) float64 {
	old := q.Get(state, action)
	maxNext := q.maxNext(next, nextLegal)
	newVal := old + q.params.Alpha*(reward+q.params.Gamma*maxNext-old)
	q.Set(state, action, newVal)
	return newVal
}

func (q *QTable) maxNext(next core.State, nextLegal []core.Action) float64 {
	actions := q.actions
	if q.params.Bootstrap == BootstrapLegalActions {
		actions = nextLegal
	}
	_, v := q.MaxAmong(next, actions)
	return v
}

func (q *QTable) Len() int {
	return len(q.table)
}

// States returns the number of distinct states with at least one entry.
func (q *QTable) States() int {
	seen := make(map[core.State]struct{})
	for k := range q.table {
		seen[k.state] = struct{}{}
	}
	return len(seen)
}

func (q *QTable) Reset() {
	q.table = make(map[stateAction]float64)
}

// Entry is one stored value.
type Entry struct {
	State  core.State
	Action core.Action
	Value  float64
}

// Entries returns every stored value sorted by state hash then action.
func (q *QTable) Entries() []Entry {
	out := make([]Entry, 0, len(q.table))
	for k, v := range q.table {
		out = append(out, Entry{State: k.state, Action: k.action, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].State.Hash(), out[j].State.Hash()
		if hi != hj {
			return hi < hj
		}
		return out[i].Action < out[j].Action
	})
	return out
}
