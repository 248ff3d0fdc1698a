//go:build windows

package win32

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/shelltint/shelltint/internal/daemon/pipeline"
	"github.com/shelltint/shelltint/internal/daemon/uiloop"
	"github.com/shelltint/shelltint/internal/platform"
)

// ui owns the locked OS thread that runs the message loop. Every window, the
// compositor and the pipeline are created and used on that thread only.
type ui struct {
	queue         *uiloop.Queue
	tint          pipeline.Color
	onShellChange func()
	log           *zap.Logger

	threadID          uint32
	host              uintptr
	taskbar           *overlayWindow
	start             *overlayWindow
	pipe              *pipeline.Pipeline
	taskbarCreatedMsg uint32

	done     chan struct{}
	stopOnce sync.Once
}

var _ platform.UI = (*ui)(nil)

// activeUI receives host window messages. There is one UI per process.
var (
	activeMu sync.Mutex
	activeUI *ui
)

var hostWndProc = windows.NewCallback(func(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	activeMu.Lock()
	u := activeUI
	activeMu.Unlock()

	if u != nil {
		switch {
		case message == wmWake:
			// The loop drains the queue after dispatch.
			return 0
		case message == wmDisplayChange:
			u.log.Info("display configuration changed")
			u.shellChanged()
			return 0
		case u.taskbarCreatedMsg != 0 && message == u.taskbarCreatedMsg:
			u.log.Info("TaskbarCreated received")
			u.shellChanged()
			return 0
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
	return r
})

// startUI launches the UI thread and waits until the pipeline exists.
func startUI(cfg platform.UIConfig) (platform.UI, error) {
	if cfg.Queue == nil {
		return nil, errors.New("ui needs a work queue")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	u := &ui{
		queue:         cfg.Queue,
		tint:          cfg.Tint,
		onShellChange: cfg.OnShellChange,
		log:           log.Named("ui"),
		done:          make(chan struct{}),
	}

	activeMu.Lock()
	if activeUI != nil {
		activeMu.Unlock()
		return nil, errors.New("ui already running")
	}
	activeUI = u
	activeMu.Unlock()

	ready := make(chan error, 1)
	go u.run(ready)
	if err := <-ready; err != nil {
		<-u.done
		return nil, err
	}
	return u, nil
}

func (u *ui) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(u.done)
	defer func() {
		activeMu.Lock()
		activeUI = nil
		activeMu.Unlock()
	}()

	u.threadID = windows.GetCurrentThreadId()
	if err := u.init(); err != nil {
		u.destroy()
		ready <- err
		return
	}
	u.queue.SetWaker(u.wake)
	u.log.Info("ui thread ready", zap.Uint32("thread", u.threadID))
	ready <- nil

	u.loop()

	// Work posted before the quit message still runs against a live pipeline.
	u.queue.Drain()
	u.queue.SetWaker(nil)
	u.pipe.Shutdown()
	u.destroy()
	u.log.Info("ui thread exited")
}

func (u *ui) init() error {
	if err := registerClass(hostClassName, hostWndProc); err != nil {
		return err
	}
	if err := registerClass(overlayClassName, overlayWndProc); err != nil {
		return err
	}

	name, err := windows.UTF16PtrFromString("TaskbarCreated")
	if err != nil {
		return err
	}
	r, _, _ := procRegisterWindowMessageW.Call(uintptr(unsafe.Pointer(name)))
	u.taskbarCreatedMsg = uint32(r)

	// A hidden top-level window; message-only windows miss broadcasts.
	if u.host, err = createWindow(hostClassName, wsExToolWindow, wsPopup); err != nil {
		return err
	}
	if u.taskbar, err = newOverlayWindow("taskbar"); err != nil {
		return err
	}
	if u.start, err = newOverlayWindow("start"); err != nil {
		return err
	}

	u.pipe, err = pipeline.New(newLayeredDevice(), u.queue, pipeline.Config{
		Taskbar: u.taskbar,
		Start:   u.start,
		Tint:    u.tint,
	}, u.log)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	return nil
}

// loop drains the work queue once per iteration and dispatches messages
// until WM_QUIT.
func (u *ui) loop() {
	var m msg
	for {
		u.queue.Drain()
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (u *ui) wake() {
	procPostMessageW.Call(u.host, wmWake, 0, 0)
}

func (u *ui) shellChanged() {
	if u.onShellChange != nil {
		u.onShellChange()
	}
}

func (u *ui) destroy() {
	if u.taskbar != nil {
		u.taskbar.destroy()
	}
	if u.start != nil {
		u.start.destroy()
	}
	if u.host != 0 {
		procDestroyWindow.Call(u.host)
	}
	unregisterClass(overlayClassName)
	unregisterClass(hostClassName)
}

// Pipeline returns the pipeline. Use it only from work posted to the queue.
func (u *ui) Pipeline() *pipeline.Pipeline {
	return u.pipe
}

// Stop ends the loop; the UI thread then releases the pipeline and its
// windows. Stop waits for the thread to exit.
func (u *ui) Stop() {
	u.stopOnce.Do(func() {
		posted := u.queue.Post(func() { procPostQuitMessage.Call(0) })
		if !posted {
			procPostThreadMessageW.Call(uintptr(u.threadID), wmQuit, 0, 0)
		}
	})
	<-u.done
}

// Done is closed when the UI thread has exited.
func (u *ui) Done() <-chan struct{} {
	return u.done
}
