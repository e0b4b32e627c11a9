package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Experiment pairs a world with the controllers that play each role in it.
type Experiment struct {
	Name        string
	World       WorldConstructor
	Controllers map[Role]ControllerConstructor
}

type DataSet interface{}

type Analyzer interface {
	Analyze(*EpisodeContext, *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type RunConfig struct {
	Episodes int
	Horizon  int

	ThresholdConsecutiveErrors int
	// SaveEveryEpisode issues an explicit Save to every controller that
	// implements Saver once an episode completes.
	SaveEveryEpisode bool
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor

	// Output receives one progress line per episode. Defaults to io.Discard.
	Output io.Writer
	Logger *logrus.Logger
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*Experiment, 0),
		Output:      io.Discard,
		Logger:      logrus.StandardLogger(),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
