package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

const refreshInterval = time.Second

var (
	state   DaemonState
	onStart func()
	onExit  func()
	logger  = zap.NewNop()

	statusItem    *systray.MenuItem
	clientItem    *systray.MenuItem
	taskbarItem   *systray.MenuItem
	startItem     *systray.MenuItem
	autoStartItem *systray.MenuItem
	quitItem      *systray.MenuItem

	stopRefresh chan struct{}
	stopOnce    sync.Once
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the daemon services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s DaemonState, log *zap.Logger, onStartFn, onExitFn func()) {
	state = s
	logger = log.Named("tray")
	onStart = onStartFn
	onExit = onExitFn
	stopRefresh = make(chan struct{})
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetIcon(iconData())
	systray.SetTooltip("ShellTint")

	header := systray.AddMenuItem("ShellTint", "")
	header.Disable()

	statusItem = systray.AddMenuItem("Starting...", "")
	statusItem.Disable()
	clientItem = systray.AddMenuItem("No dashboard connected", "")
	clientItem.Disable()

	systray.AddSeparator()

	taskbarItem = systray.AddMenuItemCheckbox("Tint taskbar", "Show the taskbar tint", false)
	startItem = systray.AddMenuItemCheckbox("Tint start menu", "Show the start menu tint", false)

	systray.AddSeparator()

	autoStartItem = systray.AddMenuItemCheckbox("Run at login", "Start ShellTint when you sign in", false)
	quitItem = systray.AddMenuItem("Quit", "Shut down ShellTint")

	// Start the daemon services
	if onStart != nil {
		onStart()
	}

	if state != nil {
		setChecked(autoStartItem, state.AutoStartEnabled())
		refresh()
	}

	go handleClicks()
	go refreshLoop()
}

func onQuit() {
	stopOnce.Do(func() { close(stopRefresh) })
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-stopRefresh:
			return

		case <-taskbarItem.ClickedCh:
			if state != nil {
				state.SetTaskbarEnabled(!taskbarItem.Checked())
				refresh()
			}

		case <-startItem.ClickedCh:
			if state != nil {
				state.SetStartEnabled(!startItem.Checked())
				refresh()
			}

		case <-autoStartItem.ClickedCh:
			if state == nil {
				continue
			}
			want := !autoStartItem.Checked()
			if err := state.SetAutoStart(want); err != nil {
				logger.Warn("failed to change autostart", zap.Bool("enabled", want), zap.Error(err))
			}
			setChecked(autoStartItem, state.AutoStartEnabled())

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

func refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stopRefresh:
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// refresh updates the status line, the checkboxes and the tooltip.
func refresh() {
	if state == nil {
		return
	}
	status := state.Status()

	statusItem.SetTitle(formatStatus(status))
	setChecked(taskbarItem, status.Taskbar.Enabled)
	setChecked(startItem, status.Start.Enabled)
	if state.ClientConnected() {
		clientItem.SetTitle("Dashboard connected")
	} else {
		clientItem.SetTitle("No dashboard connected")
	}
	systray.SetTooltip(formatTooltip(status))
}

func setChecked(item *systray.MenuItem, checked bool) {
	if item.Checked() == checked {
		return
	}
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func formatStatus(s protocol.Status) string {
	taskbar := "Taskbar: not found"
	if s.Taskbar.Found {
		taskbar = "Taskbar: " + s.Taskbar.Edge
		if s.Taskbar.AutoHide {
			taskbar += " (auto-hide)"
		}
	}

	start := "Start: off"
	switch {
	case s.Start.Enabled && s.Start.IsOpen:
		start = fmt.Sprintf("Start: open (%.0f%%)", s.Start.Confidence*100)
	case s.Start.Enabled:
		start = "Start: watching"
	}
	return taskbar + " · " + start
}

func formatTooltip(s protocol.Status) string {
	return fmt.Sprintf("ShellTint · taskbar %d%% · start %d%%", s.Taskbar.Opacity, s.Start.Opacity)
}
