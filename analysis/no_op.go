package analysis

import "github.com/zeu5/gridchase-rl/core"

// NoOpAnalyzer keeps nothing. Pair it with a comparator that ignores datasets.
type NoOpAnalyzer struct{}

var _ core.Analyzer = NoOpAnalyzer{}

func (NoOpAnalyzer) Analyze(_ *core.EpisodeContext, _ *core.Trace) {}

func (NoOpAnalyzer) DataSet() core.DataSet { return nil }

func (NoOpAnalyzer) Reset() {}

type NoOpAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = NoOpAnalyzerConstructor{}

func (NoOpAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NoOpAnalyzer{}
}

type NoOpComparator struct{}

var _ core.Comparator = &NoOpComparator{}

func NewNoOpComparator() *NoOpComparator {
	return &NoOpComparator{}
}

func (n *NoOpComparator) Compare(_ []string, _ []core.DataSet) {
}

type NoOpComparatorConstructor struct{}

var _ core.ComparatorConstructor = &NoOpComparatorConstructor{}

func NewNoOpComparatorConstructor() *NoOpComparatorConstructor {
	return &NoOpComparatorConstructor{}
}

func (n *NoOpComparatorConstructor) NewComparator(_ int) core.Comparator {
	return NewNoOpComparator()
}
