package tui

import (
	"github.com/shelltint/shelltint/internal/client"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

// ConnectedMsg carries a fresh control-channel connection.
type ConnectedMsg struct {
	Client *client.Client
}

// DisconnectedMsg signals the connection was lost or could not be made.
type DisconnectedMsg struct {
	Client *client.Client
	Err    error
}

// StatusMsg carries a status push from the daemon.
type StatusMsg struct {
	Status protocol.Status
}

// DaemonErrorMsg carries an Error message pushed by the daemon.
type DaemonErrorMsg struct {
	Error protocol.Error
}

// ErrorMsg carries a local error to display.
type ErrorMsg struct {
	Err error
}

// ReconnectMsg triggers a reconnection attempt.
type ReconnectMsg struct{}

// ClearErrorMsg clears the error display if it is still the one shown.
type ClearErrorMsg struct {
	seq int
}

// opacityDebounceMsg fires after a slider has been still for the debounce
// window.
type opacityDebounceMsg struct {
	surface int
	seq     int
}
