package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shelltint/shelltint/internal/config"
)

const daemonName = "shelltintd"

// EnsureDaemon makes sure the daemon is running, starting it if necessary.
func EnsureDaemon() error {
	running, _, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return nil
	}
	return startDaemon()
}

// startDaemon starts the daemon process in the background.
func startDaemon() error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(daemonPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = cmd.Process.Release()

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

func daemonBinaryName() string {
	if runtime.GOOS == "windows" {
		return daemonName + ".exe"
	}
	return daemonName
}

// findDaemonBinary locates shelltintd: next to this executable first, then PATH.
func findDaemonBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		daemonPath := filepath.Join(filepath.Dir(execPath), daemonBinaryName())
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	if path, err := exec.LookPath(daemonName); err == nil {
		return path, nil
	}

	buildPath := filepath.Join("build", daemonBinaryName())
	if _, err := os.Stat(buildPath); err == nil {
		return filepath.Abs(buildPath)
	}

	return "", fmt.Errorf("%s not found. Install or build it first", daemonName)
}

// GetDaemonStatus returns the daemon status.
func GetDaemonStatus() (bool, *DaemonStatusInfo, error) {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return false, nil, err
	}

	if !running || info == nil {
		return false, nil, nil
	}

	return true, &DaemonStatusInfo{
		Socket:    info.Socket,
		PID:       info.PID,
		StartedAt: info.StartedAt,
	}, nil
}

// DaemonStatusInfo contains daemon status information.
type DaemonStatusInfo struct {
	Socket    string
	PID       int
	StartedAt time.Time
}
