package gridchase

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/agents"
	"github.com/zeu5/gridchase-rl/analysis"
	"github.com/zeu5/gridchase-rl/benchmarks/common"
	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/rewards"
)

// WorldConfigFromFlags builds the world settings of a run.
func WorldConfigFromFlags(flags *common.Flags) (WorldConfig, error) {
	config := DefaultWorldConfig()
	if flags.LayoutFile != "" {
		bs, err := os.ReadFile(flags.LayoutFile)
		if err != nil {
			return config, fmt.Errorf("reading layout: %w", err)
		}
		config.Layout = string(bs)
	}
	config.Pursuers = flags.Pursuers
	config.Lives = flags.Lives
	if flags.Seed != 0 {
		config.Seed = flags.Seed
	}
	return config, nil
}

// PrepareComparison sets up the learning experiment together with a random
// baseline playing the same world.
func PrepareComparison(flags *common.Flags, logger *logrus.Logger) (*core.Comparison, error) {
	worldConfig, err := WorldConfigFromFlags(flags)
	if err != nil {
		return nil, err
	}
	worlds, err := NewWorldConstructor(worldConfig)
	if err != nil {
		return nil, err
	}

	cmp := core.NewComparison()
	cmp.Logger = logger

	cmp.AddAnalysis("returns", analysis.NewReturnAnalyzerConstructor(), analysis.NewReturnComparatorConstructor(flags.SavePath, flags.ChartWindow))
	cmp.AddAnalysis("chart", analysis.NewReturnAnalyzerConstructor(), analysis.NewChartComparatorConstructor(flags.SavePath, flags.ChartWindow))
	cmp.AddAnalysis("coverage", analysis.NewCoverageAnalyzerConstructor(EvaderID), analysis.NewCoverageComparatorConstructor(flags.SavePath))
	cmp.AddAnalysis("milestones", analysis.NewMilestoneAnalyzerConstructor(
		flags.SavePath,
		analysis.EventMilestone("evader_ate_rival", rewards.EvaderAteRival.String()),
		analysis.EventMilestone("evader_escaped", rewards.EvaderEscaped.String()),
		analysis.RewardMilestone("evader_positive_return", EvaderID, 0),
	), analysis.NewMilestoneComparatorConstructor(flags.SavePath))
	cmp.AddAnalysis("errors", analysis.NewErrorAnalyzerConstructor(flags.SavePath), analysis.NewNoOpComparatorConstructor())
	if flags.DebugFromEpisode >= 0 {
		cmp.AddAnalysis("traces", analysis.NewPrintDebugAnalyzerConstructor(flags.SavePath, flags.DebugFromEpisode), analysis.NewNoOpComparatorConstructor())
	}

	cmp.AddExperiment(&core.Experiment{
		Name:  "QLearning",
		World: worlds,
		Controllers: map[core.Role]core.ControllerConstructor{
			core.RoleEvader:  agents.NewEvaderConstructor(flags.Evader, logger),
			core.RolePursuer: agents.NewPursuerConstructor(flags.Pursuer, logger),
		},
	})

	// the baseline never reads or writes tables
	randomEvader := flags.Evader
	randomEvader.Epsilon = 1
	randomEvader.TablePath = ""
	randomEvader.SaveAtTick = agents.NeverSave
	randomPursuer := flags.Pursuer
	randomPursuer.Epsilon = 1
	randomPursuer.TablePath = ""
	randomPursuer.SaveAtTick = agents.NeverSave
	cmp.AddExperiment(&core.Experiment{
		Name:  "Random",
		World: worlds,
		Controllers: map[core.Role]core.ControllerConstructor{
			core.RoleEvader:  agents.NewEvaderConstructor(randomEvader, logger),
			core.RolePursuer: agents.NewPursuerConstructor(randomPursuer, logger),
		},
	})
	return cmp, nil
}
