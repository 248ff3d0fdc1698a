// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the per-user ShellTint directory.
	GlobalDirName = "ShellTint"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"
)

// File names
const (
	DaemonFileName   = "daemon.yaml"
	SettingsFileName = "settings.yaml"
	SocketFileName   = "shelltint.sock"
	DaemonLogName    = "shelltintd.log"
)

// GlobalDir returns the per-user directory (%LOCALAPPDATA%\ShellTint on Windows).
// SHELLTINT_HOME replaces it entirely.
func GlobalDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, GlobalDirName), nil
}

func globalPath(name string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) {
	return globalPath(DaemonFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalPath(SettingsFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return globalPath(LogsDirName)
}

// DaemonLogFile returns the path of the daemon's rotating log file.
func DaemonLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DaemonLogName), nil
}

// SocketPath returns the control channel address. SHELLTINT_SOCKET overrides it.
func SocketPath() (string, error) {
	if p := os.Getenv(EnvSocket); p != "" {
		return p, nil
	}
	return globalPath(SocketFileName)
}

// EnsureGlobalDir creates the global directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
