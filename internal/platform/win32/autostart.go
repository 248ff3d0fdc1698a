//go:build windows

package win32

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/shelltint/shelltint/internal/platform"
)

const (
	runKeyPath   = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValueName = "ShellTint"
)

// AutoStart manages the HKCU Run value that launches the daemon at login.
type AutoStart struct{}

var _ platform.AutoStart = AutoStart{}

// Enabled reports whether the Run value exists.
func (AutoStart) Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	_, _, err = key.GetStringValue(runValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read run value: %w", err)
	}
	return true, nil
}

// Enable writes command as the Run value.
func (AutoStart) Enable(command string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(runValueName, command); err != nil {
		return fmt.Errorf("failed to write run value: %w", err)
	}
	return nil
}

// Disable deletes the Run value. A missing value is not an error.
func (AutoStart) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(runValueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to delete run value: %w", err)
	}
	return nil
}
