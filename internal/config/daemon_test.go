package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelltint/shelltint/internal/models"
)

func TestDaemonInfoLifecycle(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	info, err := LoadDaemonInfo()
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, SaveDaemonInfo(models.NewDaemonInfo("/tmp/x.sock", os.Getpid())))

	running, got, err := IsDaemonRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, "/tmp/x.sock", got.Socket)

	require.NoError(t, RemoveDaemonInfo())
	running, _, err = IsDaemonRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestIsDaemonRunningRemovesStaleFile(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	// Above the kernel's pid_max, so never alive.
	require.NoError(t, SaveDaemonInfo(models.NewDaemonInfo("x", 1<<22+1)))

	running, info, err := IsDaemonRunning()
	require.NoError(t, err)
	assert.False(t, running)
	assert.NotNil(t, info)

	path, _ := GlobalDaemonFile()
	assert.False(t, FileExists(path))
}

func TestIsDaemonRunningRemovesIncompleteFile(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	info := models.NewDaemonInfo("", os.Getpid())
	require.NoError(t, SaveDaemonInfo(info))

	_, err := LoadDaemonInfo()
	assert.ErrorIs(t, err, ErrInvalidDaemonInfo)

	running, _, err := IsDaemonRunning()
	require.NoError(t, err)
	assert.False(t, running)

	path, _ := GlobalDaemonFile()
	assert.False(t, FileExists(path))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, " DEBUG ")
	t.Setenv(EnvSettle, "1s")

	o := DefaultDaemonOptions()
	o.ApplyEnv()
	assert.Equal(t, "debug", o.LogLevel)
	assert.Equal(t, "1s", o.Settle.String())

	t.Setenv(EnvSettle, "soon")
	o = DefaultDaemonOptions()
	o.ApplyEnv()
	assert.Equal(t, "500ms", o.Settle.String())
}

func TestLoadEnvFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvLogLevel, "warn")
	os.Unsetenv(EnvSettle)
	t.Cleanup(func() { os.Unsetenv(EnvSettle) })

	// Missing file is fine.
	require.NoError(t, LoadEnvFile())

	content := "SHELLTINT_SETTLE=2s\nSHELLTINT_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, EnvFileName), []byte(content), 0o644))
	require.NoError(t, LoadEnvFile())

	o := DefaultDaemonOptions()
	o.ApplyEnv()
	assert.Equal(t, "2s", o.Settle.String())
	assert.Equal(t, "warn", o.LogLevel)
}
