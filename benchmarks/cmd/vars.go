package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zeu5/gridchase-rl/benchmarks/common"
)

var (
	flags      *common.Flags = common.DefaultFlags()
	configFile string
	envFile    string
	logLevel   string

	savePath     string
	tableDir     string
	debug        bool
	layoutFile   string
	pursuers     int
	lives        int
	seed         uint64
	includeScore bool
	tieBreak     string
	bootstrap    string

	numRuns              int
	episodes             int
	horizon              int
	maxConsecutiveErrors int
	saveEveryEpisode     bool
	debugFromEpisode     int
)

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with run and agent settings")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")

	cmd.PersistentFlags().StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	cmd.PersistentFlags().StringVar(&tableDir, "table-dir", flags.TableDir, "Directory for value table files")
	cmd.PersistentFlags().BoolVar(&debug, "debug", flags.Debug, "Log every learning step")
	cmd.PersistentFlags().StringVar(&layoutFile, "layout", flags.LayoutFile, "ASCII maze file, built in maze when empty")
	cmd.PersistentFlags().IntVar(&pursuers, "pursuers", flags.Pursuers, "Number of pursuers")
	cmd.PersistentFlags().IntVar(&lives, "lives", flags.Lives, "Evader lives per episode")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", flags.Seed, "Random seed, 0 seeds from the clock")
	cmd.PersistentFlags().BoolVar(&includeScore, "include-score", flags.Evader.Encoder.IncludeScore, "Add the raw score to the evader state")
	cmd.PersistentFlags().StringVar(&tieBreak, "tie-break", flags.Evader.TieBreak.String(), "Tie break between equal values: first or random")
	cmd.PersistentFlags().StringVar(&bootstrap, "bootstrap", flags.Evader.QParams.Bootstrap.String(), "Actions to bootstrap from: all or legal")

	cmd.PersistentFlags().IntVar(&numRuns, "num-runs", flags.NumRuns, "Number of runs")
	cmd.PersistentFlags().IntVar(&episodes, "episodes", flags.Episodes, "Number of episodes")
	cmd.PersistentFlags().IntVar(&horizon, "horizon", flags.Horizon, "Horizon")
	cmd.PersistentFlags().IntVar(&maxConsecutiveErrors, "max-consecutive-errors", flags.MaxConsecutiveErrors, "Maximum number of consecutive errors")
	cmd.PersistentFlags().BoolVar(&saveEveryEpisode, "save-every-episode", flags.SaveEveryEpisode, "Save every table after each episode")
	cmd.PersistentFlags().IntVar(&debugFromEpisode, "debug-from-episode", flags.DebugFromEpisode, "Write full traces from this episode on, negative disables")
}

// UpdateFlags copies the flags set on the command line over the defaults,
// the environment and the config file.
func UpdateFlags(cmd *cobra.Command) error {
	set := cmd.Flags().Changed

	if set("save-path") {
		flags.SavePath = savePath
	}
	if set("table-dir") {
		flags.TableDir = tableDir
	}
	if set("debug") {
		flags.Debug = debug
	}
	if set("layout") {
		flags.LayoutFile = layoutFile
	}
	if set("pursuers") {
		flags.Pursuers = pursuers
	}
	if set("lives") {
		flags.Lives = lives
	}
	if set("seed") {
		flags.Seed = seed
	}
	if set("include-score") {
		flags.Evader.Encoder.IncludeScore = includeScore
	}
	if set("tie-break") {
		if err := flags.SetTieBreak(tieBreak); err != nil {
			return err
		}
	}
	if set("bootstrap") {
		if err := flags.SetBootstrap(bootstrap); err != nil {
			return err
		}
	}

	if set("num-runs") {
		flags.NumRuns = numRuns
	}
	if set("episodes") {
		flags.Episodes = episodes
	}
	if set("horizon") {
		flags.Horizon = horizon
	}
	if set("max-consecutive-errors") {
		flags.MaxConsecutiveErrors = maxConsecutiveErrors
	}
	if set("save-every-episode") {
		flags.SaveEveryEpisode = saveEveryEpisode
	}
	if set("debug-from-episode") {
		flags.DebugFromEpisode = debugFromEpisode
	}
	return nil
}
