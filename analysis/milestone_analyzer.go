package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/util"
)

// Milestone is a named check over an episode trace.
type Milestone struct {
	Name  string
	Check func(*core.Trace) bool
}

// EventMilestone matches traces where some step recorded the given event.
func EventMilestone(name, event string) Milestone {
	return Milestone{
		Name: name,
		Check: func(t *core.Trace) bool {
			for i := 0; i < t.Len(); i++ {
				if e, ok := t.Step(i).Misc["event"]; ok && e == event {
					return true
				}
			}
			return false
		},
	}
}

// RewardMilestone matches traces where one agent's return reaches at least min.
func RewardMilestone(name, agent string, min float64) Milestone {
	return Milestone{
		Name: name,
		Check: func(t *core.Trace) bool {
			total := 0.0
			for _, s := range t.AgentSteps(agent) {
				total += s.Reward
			}
			return total >= min
		},
	}
}

type milestoneDataset struct {
	Episodes int
	// Hits maps a milestone to the episodes that reached it.
	Hits map[string][]int
}

// MilestoneAnalyzer records which episodes reach each milestone and writes
// the matching traces.
type MilestoneAnalyzer struct {
	milestones []Milestone
	savePath   string
	exp        string
	dataset    *milestoneDataset
}

var _ core.Analyzer = &MilestoneAnalyzer{}

func NewMilestoneAnalyzer(savePath string, milestones ...Milestone) *MilestoneAnalyzer {
	if _, err := os.Stat(path.Join(savePath, "milestones")); os.IsNotExist(err) {
		os.MkdirAll(path.Join(savePath, "milestones"), 0755)
	}
	a := &MilestoneAnalyzer{
		milestones: milestones,
		savePath:   path.Join(savePath, "milestones"),
	}
	a.Reset()
	return a
}

func (ma *MilestoneAnalyzer) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	ma.dataset.Episodes++
	for _, m := range ma.milestones {
		if !m.Check(trace) {
			continue
		}
		first := len(ma.dataset.Hits[m.Name]) == 0
		ma.dataset.Hits[m.Name] = append(ma.dataset.Hits[m.Name], eCtx.Episode)
		if !first {
			continue
		}
		fileName := path.Join(ma.savePath, fmt.Sprintf("%d_%s_%d.txt", eCtx.Run, m.Name, eCtx.Episode))
		if ma.exp != "" {
			fileName = path.Join(ma.savePath, fmt.Sprintf("%d_%s_%s_%d.txt", eCtx.Run, ma.exp, m.Name, eCtx.Episode))
		}
		os.WriteFile(fileName, []byte(traceToString(trace)), 0644)
	}
}

func (ma *MilestoneAnalyzer) DataSet() core.DataSet {
	hits := make(map[string][]int, len(ma.dataset.Hits))
	for k, v := range ma.dataset.Hits {
		hits[k] = append([]int{}, v...)
	}
	return &milestoneDataset{Episodes: ma.dataset.Episodes, Hits: hits}
}

func (ma *MilestoneAnalyzer) Reset() {
	ma.dataset = &milestoneDataset{Hits: make(map[string][]int)}
	for _, m := range ma.milestones {
		ma.dataset.Hits[m.Name] = make([]int, 0)
	}
}

type MilestoneAnalyzerConstructor struct {
	SavePath   string
	Milestones []Milestone
}

var _ core.AnalyzerConstructor = &MilestoneAnalyzerConstructor{}

func NewMilestoneAnalyzerConstructor(savePath string, milestones ...Milestone) *MilestoneAnalyzerConstructor {
	return &MilestoneAnalyzerConstructor{
		SavePath:   savePath,
		Milestones: milestones,
	}
}

func (e *MilestoneAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewMilestoneAnalyzer(e.SavePath, e.Milestones...)
	a.exp = exp
	return a
}

type milestoneSummary struct {
	Episodes int
	Counts   map[string]int
	// First is the first episode reaching each milestone, -1 if none did.
	First map[string]int
}

// MilestoneComparator writes a per experiment summary of milestone hits.
type MilestoneComparator struct {
	savePath string
}

var _ core.Comparator = &MilestoneComparator{}

func NewMilestoneComparator(savePath string) *MilestoneComparator {
	return &MilestoneComparator{
		savePath: path.Join(savePath, "milestones.json"),
	}
}

func (c *MilestoneComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*milestoneSummary)
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*milestoneDataset)
		if !ok {
			continue
		}
		s := &milestoneSummary{
			Episodes: ds.Episodes,
			Counts:   make(map[string]int),
			First:    make(map[string]int),
		}
		for m, episodes := range ds.Hits {
			s.Counts[m] = len(episodes)
			s.First[m] = -1
			if len(episodes) > 0 {
				s.First[m] = episodes[0]
			}
		}
		out[name] = s
	}
	util.SaveJson(c.savePath, out)
}

type MilestoneComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &MilestoneComparatorConstructor{}

func NewMilestoneComparatorConstructor(savePath string) *MilestoneComparatorConstructor {
	return &MilestoneComparatorConstructor{savePath: savePath}
}

func (c *MilestoneComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewMilestoneComparator(path.Join(c.savePath, strconv.Itoa(run)))
}
