package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/shelltint/shelltint/internal/models"
)

// ErrInvalidDaemonInfo is returned when daemon.yaml parses but is incomplete.
var ErrInvalidDaemonInfo = errors.New("invalid daemon info")

var validate = validator.New()

// LoadDaemonInfo loads the daemon connection info from <GlobalDir>/daemon.yaml.
// Returns nil if the file doesn't exist.
func LoadDaemonInfo() (*models.DaemonInfo, error) {
	path, err := GlobalDaemonFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var info models.DaemonInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}
	if err := validate.Struct(&info); err != nil {
		return &info, fmt.Errorf("%w: %v", ErrInvalidDaemonInfo, err)
	}
	return &info, nil
}

// SaveDaemonInfo saves the daemon connection info to <GlobalDir>/daemon.yaml.
func SaveDaemonInfo(info *models.DaemonInfo) error {
	if err := EnsureGlobalDir(); err != nil {
		return err
	}

	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, info)
}

// RemoveDaemonInfo removes the daemon.yaml file.
func RemoveDaemonInfo() error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}

	if !FileExists(path) {
		return nil
	}
	return os.Remove(path)
}

// IsDaemonRunning checks if the daemon process is still running.
// Returns true if daemon.yaml exists and the PID is alive. A stale or
// incomplete file is removed.
func IsDaemonRunning() (bool, *models.DaemonInfo, error) {
	info, err := LoadDaemonInfo()
	if errors.Is(err, ErrInvalidDaemonInfo) {
		_ = RemoveDaemonInfo()
		return false, info, nil
	}
	if err != nil {
		return false, nil, err
	}
	if info == nil {
		return false, nil, nil
	}

	if !ProcessAlive(info.PID) {
		_ = RemoveDaemonInfo()
		return false, info, nil
	}

	return true, info, nil
}
