package util

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 5, 7}, MovingAverage([]float64{2, 4, 6, 8}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestCopyIntSlice(t *testing.T) {
	in := []int{1, 2}
	out := CopyIntSlice(in)
	out[0] = 9
	assert.Equal(t, 1, in[0])
}

type sample struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

func TestYamlKeepsAbsentFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "sample.yaml")
	require.NoError(t, SaveYaml(p, map[string]string{"name": "from-file"}))

	s := sample{Name: "default", Count: 7}
	require.NoError(t, ReadYaml(p, &s))
	assert.Equal(t, sample{Name: "from-file", Count: 7}, s)
}

func TestReadYamlErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, ReadYaml(filepath.Join(dir, "absent.yaml"), &sample{}))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: [unclosed"), 0644))
	assert.Error(t, ReadYaml(bad, &sample{}))
}

func TestSaveJson(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "out.json")
	require.NoError(t, SaveJson(p, sample{Name: "x", Count: 1}))
	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "x", "count": 1}`, string(bs))
}

func TestOutputKeepsLastLine(t *testing.T) {
	out := &Output{mu: new(sync.Mutex)}
	n, err := out.Write([]byte("episode 1\nepisode 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, "episode 2", out.Get())
}

func TestOutputPassthrough(t *testing.T) {
	var b strings.Builder
	out := &Output{mu: new(sync.Mutex), passthrough: &b}
	_, err := out.Write([]byte("episode 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "episode 1\n", b.String())
	assert.Equal(t, "", out.Get())
}
