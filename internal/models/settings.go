package models

// Opacity bounds for persisted percentages.
const (
	MinOpacity = 0
	MaxOpacity = 100
)

// Default settings values.
const (
	DefaultTaskbarOpacity = 75
	DefaultStartOpacity   = 50
)

// Settings is the persisted tint configuration.
// This corresponds to <GlobalDir>/settings.yaml.
type Settings struct {
	Version        int  `yaml:"version"`
	TaskbarOpacity int  `yaml:"taskbar_opacity"` // percent, 0-100
	StartOpacity   int  `yaml:"start_opacity"`   // percent, 0-100
	TaskbarEnabled bool `yaml:"taskbar_enabled"`
	StartEnabled   bool `yaml:"start_enabled"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:        1,
		TaskbarOpacity: DefaultTaskbarOpacity,
		StartOpacity:   DefaultStartOpacity,
		TaskbarEnabled: true,
		StartEnabled:   true,
	}
}

// Normalize clamps opacities into range and fills a missing version.
// It reports whether anything changed.
func (s *Settings) Normalize() bool {
	changed := false
	if s.Version == 0 {
		s.Version = 1
		changed = true
	}
	if c := ClampOpacity(s.TaskbarOpacity); c != s.TaskbarOpacity {
		s.TaskbarOpacity = c
		changed = true
	}
	if c := ClampOpacity(s.StartOpacity); c != s.StartOpacity {
		s.StartOpacity = c
		changed = true
	}
	return changed
}

// ClampOpacity limits a percentage to [MinOpacity, MaxOpacity].
func ClampOpacity(pct int) int {
	if pct < MinOpacity {
		return MinOpacity
	}
	if pct > MaxOpacity {
		return MaxOpacity
	}
	return pct
}

// OpacityFraction converts a percentage to the [0,1] value the renderer uses.
func OpacityFraction(pct int) float64 {
	return float64(ClampOpacity(pct)) / 100
}
