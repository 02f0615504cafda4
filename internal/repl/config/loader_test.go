package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader(nil)
	assert.NotNil(t, loader)
}

func TestLoader_LoadFromString_EmptySource(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromString("")

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotNil(t, result.Config)
	assert.Empty(t, result.Errors)

	// Should have default values
	assert.Equal(t, "fsagent> ", result.Config.Prompt)
	assert.Equal(t, "info", result.Config.LogLevel)
	assert.Equal(t, "@", result.Config.TriggerSymbol)
	assert.Equal(t, 200, result.Config.Grep.MaxMatches)
	assert.True(t, result.Config.List.Recursive)
}

func TestLoader_LoadFromString_FullConfig(t *testing.T) {
	source := `
prompt: "puppy> "
logLevel: debug
triggerSymbol: "#"
ignorePatterns:
  - "*.log"
  - tmp
allowHidden:
  - .github
grep:
  maxMatches: 50
read:
  maxBytes: 2048
list:
  recursive: false
`
	loader := NewLoader(nil)
	result, err := loader.LoadFromString(source)

	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	cfg := result.Config
	assert.Equal(t, "puppy> ", cfg.Prompt)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, '#', cfg.Trigger())
	assert.Equal(t, []string{"*.log", "tmp"}, cfg.IgnorePatterns)
	assert.Equal(t, []string{".github"}, cfg.AllowHidden)
	assert.Equal(t, 50, cfg.Grep.MaxMatches)
	assert.Equal(t, 2048, cfg.Read.MaxBytes)
	assert.False(t, cfg.List.Recursive)
}

func TestLoader_LoadFromString_PartialConfigKeepsDefaults(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromString("prompt: \"> \"\n")

	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "> ", result.Config.Prompt)
	assert.Equal(t, '@', result.Config.Trigger())
	assert.Equal(t, 100000, result.Config.Read.MaxBytes)
}

func TestLoader_LoadFromString_EmptyTriggerDisables(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromString("triggerSymbol: \"\"\n")

	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, rune(0), result.Config.Trigger())
}

func TestLoader_LoadFromString_InvalidValues(t *testing.T) {
	source := `
logLevel: loud
triggerSymbol: "@@"
grep:
  maxMatches: -1
read:
  maxBytes: 0
`
	loader := NewLoader(nil)
	result, err := loader.LoadFromString(source)

	require.NoError(t, err)
	assert.Len(t, result.Errors, 4)

	// Invalid values fall back to defaults
	assert.Equal(t, "info", result.Config.LogLevel)
	assert.Equal(t, "@", result.Config.TriggerSymbol)
	assert.Equal(t, 200, result.Config.Grep.MaxMatches)
	assert.Equal(t, 100000, result.Config.Read.MaxBytes)
}

func TestLoader_LoadFromString_ParseError(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromString("prompt: [unclosed\n")

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "parse error")
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: \"file> \"\n"), 0644))

	loader := NewLoader(nil)
	result, err := loader.LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "file> ", result.Config.Prompt)
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	loader := NewLoader(nil)
	result, err := loader.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, DefaultConfig(), result.Config)
}

func TestLoader_LoadFromFile_IsDirectory(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.LoadFromFile(t.TempDir())

	assert.Error(t, err)
}
