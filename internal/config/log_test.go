package config

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDaemonLogs(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	require.NoError(t, EnsureGlobalLogsDir())
	dir := filepath.Join(home, LogsDirName)

	old := filepath.Join(dir, "shelltintd-2026-01-02T10-00-00.000.log.gz")
	cur := filepath.Join(dir, DaemonLogName)
	require.NoError(t, os.WriteFile(old, nil, 0o644))
	require.NoError(t, os.WriteFile(cur, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.Chtimes(old, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	logs, err := ListDaemonLogs()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, DaemonLogName, logs[0].Name)
	assert.False(t, logs[0].Compressed)
	assert.True(t, logs[1].Compressed)
}

func TestListDaemonLogsMissingDir(t *testing.T) {
	t.Setenv(EnvHome, filepath.Join(t.TempDir(), "none"))
	logs, err := ListDaemonLogs()
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestTailLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DaemonLogName)
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0o644))

	logs, err := listLogs(dir)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	lines, err := TailLog(logs[0], 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, lines)

	lines, err = TailLog(logs[0], 0)
	require.NoError(t, err)
	assert.Len(t, lines, 4)
}

func TestTailLogCompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelltintd-2026-01-02T10-00-00.000.log.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Repeat("line\n", 5) + "last\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	logs, err := listLogs(dir)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	lines, err := TailLog(logs[0], 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"last"}, lines)
}
