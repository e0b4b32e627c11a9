package analysis

import (
	"path"
	"strconv"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/util"
)

type coverageDataset struct {
	Timesteps    []int
	UniqueStates []int
}

func (c *coverageDataset) Copy() *coverageDataset {
	return &coverageDataset{
		Timesteps:    util.CopyIntSlice(c.Timesteps),
		UniqueStates: util.CopyIntSlice(c.UniqueStates),
	}
}

// CoverageAnalyzer counts the distinct state keys visited so far, after
// every episode. A key space that keeps growing linearly with the
// timesteps is never revisited and so never learned from.
type CoverageAnalyzer struct {
	agents  map[string]bool
	states  map[core.State]bool
	dataset *coverageDataset
}

var _ core.Analyzer = &CoverageAnalyzer{}

// NewCoverageAnalyzer tracks the steps of agents, or of every agent when
// none are given.
func NewCoverageAnalyzer(agents ...string) *CoverageAnalyzer {
	c := &CoverageAnalyzer{
		agents: make(map[string]bool),
		states: make(map[core.State]bool),
		dataset: &coverageDataset{
			Timesteps:    make([]int, 0),
			UniqueStates: make([]int, 0),
		},
	}
	for _, a := range agents {
		c.agents[a] = true
	}
	return c
}

func (c *CoverageAnalyzer) Reset() {
	c.states = make(map[core.State]bool)
}

func (c *CoverageAnalyzer) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	for i := 0; i < trace.Len(); i++ {
		step := trace.Step(i)
		if len(c.agents) > 0 && !c.agents[step.Agent] {
			continue
		}
		if step.State != nil {
			c.states[step.State] = true
		}
	}
	lastTimeStep := 0
	if len(c.dataset.Timesteps) > 0 {
		lastTimeStep = c.dataset.Timesteps[len(c.dataset.Timesteps)-1]
	}
	c.dataset.Timesteps = append(c.dataset.Timesteps, lastTimeStep+trace.Len())
	c.dataset.UniqueStates = append(c.dataset.UniqueStates, len(c.states))
}

func (c *CoverageAnalyzer) DataSet() core.DataSet {
	return c.dataset.Copy()
}

type CoverageAnalyzerConstructor struct {
	agents []string
}

func NewCoverageAnalyzerConstructor(agents ...string) *CoverageAnalyzerConstructor {
	return &CoverageAnalyzerConstructor{
		agents: agents,
	}
}

var _ core.AnalyzerConstructor = &CoverageAnalyzerConstructor{}

func (c *CoverageAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewCoverageAnalyzer(c.agents...)
}

type CoverageComparator struct {
	savePath string
}

var _ core.Comparator = &CoverageComparator{}

func NewCoverageComparator(savePath string) *CoverageComparator {
	return &CoverageComparator{
		savePath: path.Join(savePath, "coverage.json"),
	}
}

func (c *CoverageComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*coverageDataset)
	for i, name := range experimentNames {
		if ds, ok := datasets[i].(*coverageDataset); ok {
			out[name] = ds
		}
	}

	util.SaveJson(c.savePath, out)
}

type CoverageComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &CoverageComparatorConstructor{}

func (c *CoverageComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewCoverageComparator(path.Join(c.savePath, strconv.Itoa(run)))
}

func NewCoverageComparatorConstructor(savePath string) *CoverageComparatorConstructor {
	return &CoverageComparatorConstructor{
		savePath: savePath,
	}
}
