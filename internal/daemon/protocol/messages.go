// Package protocol defines the control channel messages exchanged between the
// daemon and its single client. Every message is one JSON object per line
// with a "type" field.
package protocol

// Inbound message types.
const (
	TypeSetTaskbarOpacity = "SetTaskbarOpacity"
	TypeSetStartOpacity   = "SetStartOpacity"
	TypeSetTaskbarEnabled = "SetTaskbarEnabled"
	TypeSetStartEnabled   = "SetStartEnabled"
	TypeGetStatus         = "GetStatus"
	TypeShutdown          = "Shutdown"
)

// Outbound message types.
const (
	TypeStatusUpdate = "StatusUpdate"
	TypeError        = "Error"
)

// CodeStartDetectionFailed is sent when start menu detection disables itself.
const CodeStartDetectionFailed = "START_DETECTION_FAILED"

// Surface names the overlay a command targets.
type Surface string

// Surfaces.
const (
	Taskbar Surface = "taskbar"
	Start   Surface = "start"
)

// Command is a decoded inbound message: SetOpacity, SetEnabled, GetStatus
// or Shutdown.
type Command interface {
	isCommand()
}

// SetOpacity requests a new opacity percentage for one surface.
type SetOpacity struct {
	Surface Surface
	Opacity int // percent, clamped to 0-100
}

// SetEnabled turns the tint for one surface on or off.
type SetEnabled struct {
	Surface Surface
	Enabled bool
}

// GetStatus asks for a StatusUpdate.
type GetStatus struct{}

// Shutdown asks the daemon to exit.
type Shutdown struct{}

func (SetOpacity) isCommand() {}
func (SetEnabled) isCommand() {}
func (GetStatus) isCommand()  {}
func (Shutdown) isCommand()   {}

// TaskbarStatus is the taskbar half of a StatusUpdate.
type TaskbarStatus struct {
	Found    bool   `json:"found"`
	Edge     string `json:"edge"`
	AutoHide bool   `json:"autoHide"`
	Enabled  bool   `json:"enabled"`
	Opacity  int    `json:"opacity"`
}

// StartStatus is the start menu half of a StatusUpdate.
type StartStatus struct {
	Detected   bool    `json:"detected"`
	IsOpen     bool    `json:"isOpen"`
	Confidence float64 `json:"confidence"`
	Enabled    bool    `json:"enabled"`
	Opacity    int     `json:"opacity"`
}

// Status is a full snapshot of the daemon's view.
type Status struct {
	Taskbar TaskbarStatus `json:"taskbar"`
	Start   StartStatus   `json:"start"`
}

// Message is a decoded outbound message: StatusUpdate or Error.
type Message interface {
	isMessage()
}

// StatusUpdate carries a Status snapshot. It is pushed after every state
// change and in reply to GetStatus.
type StatusUpdate struct {
	Status
}

// Error reports a degraded feature to the client.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (StatusUpdate) isMessage() {}
func (Error) isMessage()        {}
