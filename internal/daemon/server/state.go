package server

import (
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/protocol"
	"github.com/shelltint/shelltint/internal/platform"
)

// TrayState adapts a Server and its Handler to the tray.DaemonState interface.
// Menu toggles go through the handler exactly like control commands.
type TrayState struct {
	srv       *Server
	handler   Handler
	autoStart platform.AutoStart
	command   string
	shutdown  func()
	log       *zap.Logger
}

// NewTrayState creates a TrayState. command is the login entry registered
// when autostart is switched on; autoStart may be nil.
func NewTrayState(srv *Server, handler Handler, autoStart platform.AutoStart, command string, shutdown func(), log *zap.Logger) *TrayState {
	return &TrayState{
		srv:       srv,
		handler:   handler,
		autoStart: autoStart,
		command:   command,
		shutdown:  shutdown,
		log:       log.Named("tray"),
	}
}

// Status returns the current snapshot.
func (t *TrayState) Status() protocol.Status {
	return t.handler.Status()
}

// ClientConnected reports whether a control client is attached.
func (t *TrayState) ClientConnected() bool {
	return t.srv != nil && t.srv.Connected()
}

// SetTaskbarEnabled toggles the taskbar tint.
func (t *TrayState) SetTaskbarEnabled(enabled bool) {
	t.handler.HandleCommand(protocol.SetEnabled{Surface: protocol.Taskbar, Enabled: enabled})
}

// SetStartEnabled toggles the start menu tint and its detection.
func (t *TrayState) SetStartEnabled(enabled bool) {
	t.handler.HandleCommand(protocol.SetEnabled{Surface: protocol.Start, Enabled: enabled})
}

// AutoStartEnabled reports whether the login entry exists.
func (t *TrayState) AutoStartEnabled() bool {
	if t.autoStart == nil {
		return false
	}
	on, err := t.autoStart.Enabled()
	if err != nil {
		t.log.Warn("failed to read autostart entry", zap.Error(err))
		return false
	}
	return on
}

// SetAutoStart adds or removes the login entry.
func (t *TrayState) SetAutoStart(enabled bool) error {
	if t.autoStart == nil {
		return platform.ErrUnsupported
	}
	if enabled {
		return t.autoStart.Enable(t.command)
	}
	return t.autoStart.Disable()
}

// RequestShutdown starts a graceful daemon shutdown.
func (t *TrayState) RequestShutdown() {
	if t.shutdown != nil {
		t.shutdown()
	}
}
