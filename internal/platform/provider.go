// Package platform connects the daemon to the native shell. Backends register
// themselves from init; on an unsupported OS NewProvider returns ErrUnsupported.
package platform

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/locator"
	"github.com/shelltint/shelltint/internal/daemon/pipeline"
	"github.com/shelltint/shelltint/internal/daemon/uiloop"
)

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("shelltint is not supported on %s/%s; supported: windows/amd64, windows/arm64", runtime.GOOS, runtime.GOARCH)

// AutoStart manages the per-user login entry for the daemon.
type AutoStart interface {
	Enabled() (bool, error)
	// Enable registers command to run at login.
	Enable(command string) error
	Disable() error
}

// UIConfig is handed to StartUI.
type UIConfig struct {
	Queue *uiloop.Queue
	Tint  pipeline.Color
	// OnShellChange runs on the UI thread when the shell restarts or the
	// display configuration changes. It must not block.
	OnShellChange func()
	Log           *zap.Logger
}

// UI is a running native message loop. It owns the overlay windows and the
// pipeline built on them.
type UI interface {
	// Pipeline returns the pipeline. It may only be used from work posted to
	// the UI queue.
	Pipeline() *pipeline.Pipeline
	// Stop shuts the pipeline down on the UI thread, ends the loop and waits
	// for the thread to exit.
	Stop()
	// Done is closed when the loop has exited.
	Done() <-chan struct{}
}

// Provider bundles the backends for the current OS.
type Provider struct {
	Shell     locator.Shell
	AutoStart AutoStart
	// StartUI creates the UI thread, its windows and the pipeline, and
	// returns once they exist.
	StartUI func(cfg UIConfig) (UI, error)
}

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/win32/init.go for the Windows registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
