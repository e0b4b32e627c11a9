package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/zeu5/gridchase-rl/agents"
	"github.com/zeu5/gridchase-rl/policies"
	"github.com/zeu5/gridchase-rl/util"
)

const (
	EnvSavePath = "GRIDCHASE_SAVE_PATH"
	EnvTableDir = "GRIDCHASE_TABLE_DIR"
)

type Flags struct {
	RunID    string `yaml:"-" json:"run_id"`
	SavePath string `yaml:"save_path" json:"save_path"`
	// TableDir is prepended to relative table paths.
	TableDir string `yaml:"table_dir" json:"table_dir"`
	Debug    bool   `yaml:"debug" json:"debug"`

	RunFlags  `yaml:",inline" json:"run"`
	GameFlags `yaml:",inline" json:"game"`

	Evader  agents.EvaderConfig  `yaml:"evader" json:"evader"`
	Pursuer agents.PursuerConfig `yaml:"pursuer" json:"pursuer"`
}

type RunFlags struct {
	NumRuns              int  `yaml:"num_runs" json:"num_runs"`
	Episodes             int  `yaml:"episodes" json:"episodes"`
	Horizon              int  `yaml:"horizon" json:"horizon"`
	MaxConsecutiveErrors int  `yaml:"max_consecutive_errors" json:"max_consecutive_errors"`
	SaveEveryEpisode     bool `yaml:"save_every_episode" json:"save_every_episode"`
	// DebugFromEpisode writes full traces from this episode on. Negative
	// disables trace output.
	DebugFromEpisode int `yaml:"debug_from_episode" json:"debug_from_episode"`
	ChartWindow      int `yaml:"chart_window" json:"chart_window"`
}

type GameFlags struct {
	// LayoutFile is an ASCII maze. Empty uses the built in maze.
	LayoutFile string `yaml:"layout_file" json:"layout_file"`
	Pursuers   int    `yaml:"pursuers" json:"pursuers"`
	Lives      int    `yaml:"lives" json:"lives"`
	Seed       uint64 `yaml:"seed" json:"seed"`
}

func DefaultFlags() *Flags {
	return &Flags{
		SavePath: "results",
		TableDir: "tables",
		RunFlags: RunFlags{
			NumRuns:              1,
			Episodes:             500,
			Horizon:              200,
			MaxConsecutiveErrors: 20,
			SaveEveryEpisode:     true,
			DebugFromEpisode:     -1,
			ChartWindow:          20,
		},
		GameFlags: GameFlags{
			Pursuers: 4,
			Lives:    3,
		},
		Evader:  agents.DefaultEvaderConfig(),
		Pursuer: agents.DefaultPursuerConfig(),
	}
}

// LoadEnv reads a .env file when present and applies the GRIDCHASE_
// variables. A missing .env is not an error.
func (f *Flags) LoadEnv(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	if v := os.Getenv(EnvSavePath); v != "" {
		f.SavePath = v
	}
	if v := os.Getenv(EnvTableDir); v != "" {
		f.TableDir = v
	}
	return nil
}

// LoadFile overlays the YAML file at path on the current values.
func (f *Flags) LoadFile(path string) error {
	return util.ReadYaml(path, f)
}

// Finalize assigns the run id and resolves the table paths. It must be
// called once after every source of settings has been applied.
func (f *Flags) Finalize() error {
	f.RunID = uuid.NewString()
	f.Evader.TablePath = f.tablePath(f.Evader.TablePath)
	f.Pursuer.TablePath = f.tablePath(f.Pursuer.TablePath)
	if f.Seed != 0 {
		if f.Evader.Seed == 0 {
			f.Evader.Seed = f.Seed
		}
		if f.Pursuer.Seed == 0 {
			f.Pursuer.Seed = f.Seed + 1000
		}
	}
	return f.Validate()
}

func (f *Flags) tablePath(p string) string {
	if p == "" || f.TableDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.TableDir, p)
}

func (f *Flags) Validate() error {
	if f.Episodes <= 0 || f.Horizon <= 0 || f.NumRuns <= 0 {
		return fmt.Errorf("runs, episodes and horizon must be positive, got %d, %d, %d", f.NumRuns, f.Episodes, f.Horizon)
	}
	if f.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("max consecutive errors must be positive, got %d", f.MaxConsecutiveErrors)
	}
	if err := f.Evader.Validate(); err != nil {
		return err
	}
	return f.Pursuer.Validate()
}

// SetTieBreak applies a tie break to both roles.
func (f *Flags) SetTieBreak(s string) error {
	t, err := policies.ParseTieBreak(s)
	if err != nil {
		return err
	}
	f.Evader.TieBreak = t
	f.Pursuer.TieBreak = t
	return nil
}

// SetBootstrap applies a bootstrap mode to both roles.
func (f *Flags) SetBootstrap(s string) error {
	b, err := policies.ParseBootstrapMode(s)
	if err != nil {
		return err
	}
	f.Evader.QParams.Bootstrap = b
	f.Pursuer.QParams.Bootstrap = b
	return nil
}

// Record writes the effective configuration next to the results.
func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}

// EnsureTableDir creates the directory table files are written to.
func (f *Flags) EnsureTableDir() error {
	if f.TableDir == "" {
		return nil
	}
	return util.EnsureDir(f.TableDir)
}
