package analysis

import (
	"math"
	"path"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/util"
)

type returnDataset struct {
	Episodes int
	// Returns holds one undiscounted return per episode for each agent.
	Returns map[string][]float64
}

func (r *returnDataset) Copy() *returnDataset {
	out := &returnDataset{
		Episodes: r.Episodes,
		Returns:  make(map[string][]float64, len(r.Returns)),
	}
	for a, v := range r.Returns {
		out.Returns[a] = append([]float64{}, v...)
	}
	return out
}

func (r *returnDataset) Agents() []string {
	agents := make([]string, 0, len(r.Returns))
	for a := range r.Returns {
		agents = append(agents, a)
	}
	sort.Strings(agents)
	return agents
}

// ReturnAnalyzer sums the rewards each agent recorded in an episode.
type ReturnAnalyzer struct {
	dataset *returnDataset
}

var _ core.Analyzer = &ReturnAnalyzer{}

func NewReturnAnalyzer() *ReturnAnalyzer {
	r := &ReturnAnalyzer{}
	r.Reset()
	return r
}

func (r *ReturnAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	sums := make(map[string]float64)
	for i := 0; i < trace.Len(); i++ {
		step := trace.Step(i)
		sums[step.Agent] += step.Reward
	}
	for agent := range sums {
		if _, ok := r.dataset.Returns[agent]; !ok {
			// agents first seen late read as 0 for the earlier episodes
			r.dataset.Returns[agent] = make([]float64, r.dataset.Episodes)
		}
	}
	for agent := range r.dataset.Returns {
		r.dataset.Returns[agent] = append(r.dataset.Returns[agent], sums[agent])
	}
	r.dataset.Episodes++
}

func (r *ReturnAnalyzer) DataSet() core.DataSet {
	return r.dataset.Copy()
}

func (r *ReturnAnalyzer) Reset() {
	r.dataset = &returnDataset{Returns: make(map[string][]float64)}
}

type ReturnAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &ReturnAnalyzerConstructor{}

func NewReturnAnalyzerConstructor() *ReturnAnalyzerConstructor {
	return &ReturnAnalyzerConstructor{}
}

func (*ReturnAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewReturnAnalyzer()
}

// ReturnSummary describes one agent's returns over a run.
type ReturnSummary struct {
	Mean float64
	Std  float64
	// TailMean is the mean over the last tail episodes.
	TailMean float64
	Min      float64
	Max      float64
}

// Summarize computes a ReturnSummary. Empty input is all zeros.
func Summarize(returns []float64, tail int) ReturnSummary {
	if len(returns) == 0 {
		return ReturnSummary{}
	}
	s := ReturnSummary{Min: math.Inf(1), Max: math.Inf(-1)}
	s.Mean, s.Std = stat.MeanStdDev(returns, nil)
	if len(returns) < 2 {
		s.Std = 0
	}
	for _, v := range returns {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if tail <= 0 || tail > len(returns) {
		tail = len(returns)
	}
	s.TailMean = stat.Mean(returns[len(returns)-tail:], nil)
	return s
}

type returnComparison struct {
	Returns map[string][]float64
	Summary map[string]ReturnSummary
}

// ReturnComparator writes the returns of every experiment with summary
// statistics.
type ReturnComparator struct {
	savePath string
	tail     int
}

var _ core.Comparator = &ReturnComparator{}

func NewReturnComparator(savePath string, tail int) *ReturnComparator {
	return &ReturnComparator{
		savePath: path.Join(savePath, "returns.json"),
		tail:     tail,
	}
}

func (c *ReturnComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*returnComparison)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*returnDataset)
		if !ok {
			continue
		}
		cmp := &returnComparison{
			Returns: ds.Returns,
			Summary: make(map[string]ReturnSummary),
		}
		for agent, returns := range ds.Returns {
			cmp.Summary[agent] = Summarize(returns, c.tail)
		}
		out[name] = cmp
	}
	util.SaveJson(c.savePath, out)
}

type ReturnComparatorConstructor struct {
	savePath string
	tail     int
}

var _ core.ComparatorConstructor = &ReturnComparatorConstructor{}

func NewReturnComparatorConstructor(savePath string, tail int) *ReturnComparatorConstructor {
	return &ReturnComparatorConstructor{
		savePath: savePath,
		tail:     tail,
	}
}

func (c *ReturnComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewReturnComparator(path.Join(c.savePath, strconv.Itoa(run)), c.tail)
}
