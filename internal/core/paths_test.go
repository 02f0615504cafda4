package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths_DataDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv(dataDirOverride, dir)
	ResetPaths()
	defer ResetPaths()

	assert.Equal(t, dir, DataDir())
	assert.Equal(t, filepath.Join(dir, "fsagent.log"), LogFile())
	assert.Equal(t, filepath.Join(dir, "history.db"), HistoryFile())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPaths_DefaultUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(dataDirOverride, "")
	ResetPaths()
	defer ResetPaths()

	assert.Equal(t, home, HomeDir())
	assert.Equal(t, filepath.Join(home, ".fsagent"), DataDir())
}
