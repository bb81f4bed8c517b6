package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoabsen/internal/daemon"
)

func TestServeStopRun_NoPidFile(t *testing.T) {
	dir := testEnv(t)
	viper.Set("daemon.pid_file", filepath.Join(dir, "autoabsen.pid"))

	err := serveStopRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no daemon pid file")
}

func TestServeDaemonRun_AlreadyRunning(t *testing.T) {
	dir := testEnv(t)
	pidPath := filepath.Join(dir, "autoabsen.pid")
	viper.Set("daemon.pid_file", pidPath)

	// The current process is alive, so its PID counts as a running daemon.
	pf := daemon.NewPIDFile(pidPath)
	require.NoError(t, pf.Write())

	err := serveDaemonRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestBuildEngine(t *testing.T) {
	dir := testEnv(t)
	viper.Set("diag.db_path", filepath.Join(dir, "diag.db"))

	eng, cleanup, err := buildEngine()
	require.NoError(t, err)
	defer cleanup()

	snap := eng.Status()
	assert.False(t, snap.LoggedIn)
	assert.False(t, snap.Running)
}
