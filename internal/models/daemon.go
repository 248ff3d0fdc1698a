package models

import "time"

// DaemonInfo represents the daemon connection information.
// This corresponds to <GlobalDir>/daemon.yaml.
type DaemonInfo struct {
	Version   int       `yaml:"version" validate:"eq=1"`
	Socket    string    `yaml:"socket" validate:"required"`
	PID       int       `yaml:"pid" validate:"gt=0"`
	StartedAt time.Time `yaml:"started_at" validate:"required"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(socket string, pid int) *DaemonInfo {
	return &DaemonInfo{
		Version:   1,
		Socket:    socket,
		PID:       pid,
		StartedAt: time.Now().UTC(),
	}
}
