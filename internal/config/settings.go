package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shelltint/shelltint/internal/models"
)

// ErrInvalidSettings is returned when a settings file parses but cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

// LoadSettings loads the settings from <GlobalDir>/settings.yaml.
// If the file doesn't exist, defaults are written and returned.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile is LoadSettings for an explicit path.
func LoadSettingsFile(path string) (*models.Settings, error) {
	s, _, err := LoadYAMLOrCreate(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if s.Version > 1 {
		return nil, fmt.Errorf("%w: %s has version %d", ErrInvalidSettings, path, s.Version)
	}
	s.Normalize()
	return s, nil
}

// SaveSettings saves the settings to <GlobalDir>/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// Store holds the live settings and persists every mutation.
type Store struct {
	mu       sync.Mutex
	path     string
	settings models.Settings
}

// OpenStore loads (or creates) the settings file at path.
func OpenStore(path string) (*Store, error) {
	s, err := LoadSettingsFile(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, settings: *s}, nil
}

// Path returns the backing file.
func (st *Store) Path() string {
	return st.path
}

// Get returns a copy of the current settings.
func (st *Store) Get() models.Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.settings
}

// Update applies fn to a copy of the settings, normalizes it and saves.
// The in-memory value only changes when the save succeeds.
func (st *Store) Update(fn func(s *models.Settings)) (models.Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.settings
	fn(&next)
	next.Normalize()
	if err := SaveYAML(st.path, &next); err != nil {
		return st.settings, err
	}
	st.settings = next
	return next, nil
}

// Reload re-reads the backing file. It reports whether the value differs
// from what the store held.
func (st *Store) Reload() (models.Settings, bool, error) {
	s, err := LoadSettingsFile(st.path)
	if err != nil {
		return st.Get(), false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	changed := *s != st.settings
	st.settings = *s
	return *s, changed, nil
}
