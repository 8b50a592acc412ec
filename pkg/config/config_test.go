package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
graph: lollipop
size: "64:512"
move: first
density: 0.75
threshold: 0.6
alpha: 0.0001
eps: 0.0005
threads: 4
seed: 42
k: 16
plot: true
debug: true
debug_every: 25
horizon: 2000000
checkpoints: 96
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	f, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "lollipop", f.Graph)
	assert.Equal(t, "64:512", f.Size)
	assert.Equal(t, "first", f.Move)
	assert.Equal(t, 0.75, f.Density)
	assert.Equal(t, 0.6, f.Threshold)
	assert.Equal(t, 0.0001, f.Alpha)
	assert.Equal(t, 0.0005, f.Eps)
	assert.Equal(t, 4, f.Threads)
	assert.EqualValues(t, 42, f.Seed)
	assert.Equal(t, 16, f.K)
	assert.True(t, f.Plot)
	assert.True(t, f.Debug)
	assert.Equal(t, 25, f.DebugEvery)
	assert.EqualValues(t, 2000000, f.Horizon)
	assert.Equal(t, 96, f.Checkpoints)
}

func TestLoad_EmptyPath(t *testing.T) {
	f, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, "", f.Graph)
}

func TestLoad_FileNotFound(t *testing.T) {
	f, err := Load("/nonexistent/path/schelling.yaml")
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
graph: torus
size: "256x256"
density: 0.9
`)
	f, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "torus", f.Graph)
	assert.Equal(t, "256x256", f.Size)
	assert.Equal(t, 0.9, f.Density)
}
