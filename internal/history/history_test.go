package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *HistoryManager {
	t.Helper()
	hm, err := NewHistoryManager(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hm.Close() })
	return hm
}

func commandsOf(entries []HistoryEntry) []string {
	commands := make([]string, len(entries))
	for i, e := range entries {
		commands[i] = e.Command
	}
	return commands
}

func TestHistoryManager_StartAndFinish(t *testing.T) {
	hm := newTestManager(t)

	entry, err := hm.StartCommand("read @main.go", "/work")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.Succeeded.Valid)

	entry, err = hm.FinishCommand(entry, true)
	require.NoError(t, err)
	assert.True(t, entry.Succeeded.Valid)
	assert.True(t, entry.Succeeded.Bool)

	entries, err := hm.GetRecentEntries("", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Succeeded.Bool)
}

func TestHistoryManager_GetRecentEntries(t *testing.T) {
	hm := newTestManager(t)

	for _, c := range []string{"ls", "read @a.txt", "grep foo"} {
		_, err := hm.StartCommand(c, "/one")
		require.NoError(t, err)
	}
	_, err := hm.StartCommand("tools", "/two")
	require.NoError(t, err)

	entries, err := hm.GetRecentEntries("", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"read @a.txt", "grep foo", "tools"}, commandsOf(entries))

	entries, err = hm.GetRecentEntries("/one", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "read @a.txt", "grep foo"}, commandsOf(entries))
}

func TestHistoryManager_GetRecentEntriesByPrefix(t *testing.T) {
	hm := newTestManager(t)

	for _, c := range []string{"read a", "grep x", "read b", "100% done", "100x"} {
		_, err := hm.StartCommand(c, "")
		require.NoError(t, err)
	}

	entries, err := hm.GetRecentEntriesByPrefix("read", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"read b", "read a"}, commandsOf(entries))

	entries, err = hm.GetRecentEntriesByPrefix("100%", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, commandsOf(entries))
}

func TestHistoryManager_SearchHistory(t *testing.T) {
	hm := newTestManager(t)

	for _, c := range []string{"read @internal/history/history.go", "ls", "grep TODO", "ls"} {
		_, err := hm.StartCommand(c, "")
		require.NoError(t, err)
	}

	entries, err := hm.SearchHistory("rdhist", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"read @internal/history/history.go"}, commandsOf(entries))

	entries, err = hm.SearchHistory("", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "grep TODO", "read @internal/history/history.go"}, commandsOf(entries))

	entries, err = hm.SearchHistory("", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls"}, commandsOf(entries))

	entries, err = hm.SearchHistory("zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryManager_DeleteAndReset(t *testing.T) {
	hm := newTestManager(t)

	a, err := hm.StartCommand("a", "")
	require.NoError(t, err)
	_, err = hm.StartCommand("b", "")
	require.NoError(t, err)

	require.NoError(t, hm.DeleteEntry(a.ID))
	assert.Error(t, hm.DeleteEntry(a.ID))

	entries, err := hm.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, commandsOf(entries))

	require.NoError(t, hm.ResetHistory())
	entries, err = hm.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryManager_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	hm, err := NewHistoryManager(path, nil)
	require.NoError(t, err)
	_, err = hm.StartCommand("persisted", "")
	require.NoError(t, err)
	require.NoError(t, hm.Close())

	data, err := os.ReadFile(filepath.Join(dir, "history_schema_version"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))

	hm, err = NewHistoryManager(path, nil)
	require.NoError(t, err)
	defer hm.Close()

	entries, err := hm.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, commandsOf(entries))
}
