// Package tray implements the system tray icon and menu for the daemon.
package tray

import "github.com/shelltint/shelltint/internal/daemon/protocol"

// DaemonState gives the tray read access to daemon state and routes menu
// actions back into it.
type DaemonState interface {
	Status() protocol.Status
	ClientConnected() bool
	SetTaskbarEnabled(enabled bool)
	SetStartEnabled(enabled bool)
	AutoStartEnabled() bool
	SetAutoStart(enabled bool) error
	RequestShutdown()
}
