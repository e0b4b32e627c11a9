package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/gridchase-rl/policies"
)

func TestDefaultFlagsAreValid(t *testing.T) {
	f := DefaultFlags()
	require.NoError(t, f.Finalize())
	assert.NotEmpty(t, f.RunID)
	assert.Equal(t, filepath.Join("tables", "qtable.txt"), f.Evader.TablePath)
	assert.Equal(t, filepath.Join("tables", "ghost_qtable_{id}.csv"), f.Pursuer.TablePath)
}

func TestFinalizeSeeds(t *testing.T) {
	f := DefaultFlags()
	f.Seed = 9
	f.Pursuer.Seed = 3
	require.NoError(t, f.Finalize())
	assert.Equal(t, uint64(9), f.Evader.Seed)
	assert.Equal(t, uint64(3), f.Pursuer.Seed, "explicit seeds win")
}

func TestFinalizeKeepsAbsolutePaths(t *testing.T) {
	f := DefaultFlags()
	abs := filepath.Join(t.TempDir(), "q.txt")
	f.Evader.TablePath = abs
	f.TableDir = ""
	f.Pursuer.TablePath = "ghost.csv"
	require.NoError(t, f.Finalize())
	assert.Equal(t, abs, f.Evader.TablePath)
	assert.Equal(t, "ghost.csv", f.Pursuer.TablePath)
}

func TestValidate(t *testing.T) {
	f := DefaultFlags()
	f.Episodes = 0
	assert.Error(t, f.Validate())

	f = DefaultFlags()
	f.Evader.Epsilon = -1
	assert.Error(t, f.Validate())
}

func TestLoadFileOverlays(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
episodes: 42
pursuers: 2
evader:
  epsilon: 0.3
  tie_break: random
pursuer:
  q_params:
    bootstrap: legal
`), 0644))

	f := DefaultFlags()
	require.NoError(t, f.LoadFile(p))
	assert.Equal(t, 42, f.Episodes)
	assert.Equal(t, 200, f.Horizon)
	assert.Equal(t, 2, f.Pursuers)
	assert.Equal(t, 0.3, f.Evader.Epsilon)
	assert.Equal(t, policies.TieBreakRandom, f.Evader.TieBreak)
	assert.Equal(t, 10, f.Evader.VisualRange, "absent fields keep defaults")
	assert.Equal(t, policies.BootstrapLegalActions, f.Pursuer.QParams.Bootstrap)
	assert.Equal(t, 0.1, f.Pursuer.QParams.Alpha)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GRIDCHASE_TABLE_DIR=from-env\n"), 0644))
	t.Setenv(EnvSavePath, "saved")
	// restored after the test, unset now so that the .env file applies
	t.Setenv(EnvTableDir, "")
	require.NoError(t, os.Unsetenv(EnvTableDir))

	f := DefaultFlags()
	require.NoError(t, f.LoadEnv(envFile))
	assert.Equal(t, "saved", f.SavePath)
	assert.Equal(t, "from-env", f.TableDir)

	require.NoError(t, DefaultFlags().LoadEnv(filepath.Join(dir, "absent.env")))
}

func TestSetters(t *testing.T) {
	f := DefaultFlags()
	require.NoError(t, f.SetTieBreak("random"))
	assert.Equal(t, policies.TieBreakRandom, f.Pursuer.TieBreak)
	require.NoError(t, f.SetBootstrap("legal"))
	assert.Equal(t, policies.BootstrapLegalActions, f.Evader.QParams.Bootstrap)
	assert.Error(t, f.SetTieBreak("coin"))
}

func TestRecord(t *testing.T) {
	f := DefaultFlags()
	f.SavePath = t.TempDir()
	require.NoError(t, f.Record())
	assert.FileExists(t, filepath.Join(f.SavePath, "config.json"))
}
