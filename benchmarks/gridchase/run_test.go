package gridchase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/gridchase-rl/benchmarks/common"
	"github.com/zeu5/gridchase-rl/core"
)

func TestWorldConfigFromFlags(t *testing.T) {
	layout := filepath.Join(t.TempDir(), "maze.txt")
	require.NoError(t, os.WriteFile(layout, []byte(smallLayout), 0644))

	f := common.DefaultFlags()
	f.LayoutFile = layout
	f.Pursuers = 1
	f.Seed = 11
	config, err := WorldConfigFromFlags(f)
	require.NoError(t, err)
	assert.Equal(t, smallLayout, config.Layout)
	assert.Equal(t, 1, config.Pursuers)
	assert.Equal(t, uint64(11), config.Seed)

	f.LayoutFile = filepath.Join(t.TempDir(), "absent.txt")
	_, err = WorldConfigFromFlags(f)
	assert.Error(t, err)
}

func TestTrainingRun(t *testing.T) {
	dir := t.TempDir()
	f := common.DefaultFlags()
	f.SavePath = filepath.Join(dir, "results")
	f.TableDir = filepath.Join(dir, "tables")
	f.Episodes = 3
	f.Horizon = 30
	f.Seed = 7
	require.NoError(t, f.Finalize())
	require.NoError(t, f.EnsureTableDir())

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cmp, err := PrepareComparison(f, logger)
	require.NoError(t, err)
	require.Len(t, cmp.Experiments, 2)

	cmp.Run(context.Background(), 1, &core.RunConfig{
		Episodes:                   f.Episodes,
		Horizon:                    f.Horizon,
		ThresholdConsecutiveErrors: f.MaxConsecutiveErrors,
		SaveEveryEpisode:           f.SaveEveryEpisode,
	})

	assert.FileExists(t, filepath.Join(f.TableDir, "qtable.txt"))
	for i := 0; i < f.Pursuers; i++ {
		assert.FileExists(t, filepath.Join(f.TableDir, "ghost_qtable_"+PursuerID(i)+".csv"))
	}
	for _, name := range []string{"returns.json", "returns.html", "coverage.json", "milestones.json"} {
		assert.FileExists(t, filepath.Join(f.SavePath, "0", name))
	}
}
