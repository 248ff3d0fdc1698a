//go:build windows

package win32

import (
	"fmt"
	"slices"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/shelltint/shelltint/internal/daemon/locator"
	"github.com/shelltint/shelltint/internal/models"
)

// Shell implements locator.Shell with user32 and shell32 calls.
type Shell struct{}

var _ locator.Shell = (*Shell)(nil)

// NewShell creates a Shell.
func NewShell() *Shell {
	return &Shell{}
}

// ScreenSize returns the primary screen size in pixels.
func (s *Shell) ScreenSize() (models.Size, error) {
	w, _, _ := procGetSystemMetrics.Call(smCXScreen)
	h, _, _ := procGetSystemMetrics.Call(smCYScreen)
	if w == 0 || h == 0 {
		return models.Size{}, fmt.Errorf("GetSystemMetrics returned %dx%d", w, h)
	}
	return models.Size{Width: int(int32(w)), Height: int(int32(h))}, nil
}

// FindTaskbar returns the primary tray window.
func (s *Shell) FindTaskbar() (locator.Handle, error) {
	class, err := windows.UTF16PtrFromString(locator.TaskbarClass)
	if err != nil {
		return 0, err
	}
	h, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(class)), 0)
	return locator.Handle(h), nil
}

// IsWindow reports whether h names a live window.
func (s *Shell) IsWindow(h locator.Handle) bool {
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

// IsVisible reports the WS_VISIBLE state of h.
func (s *Shell) IsVisible(h locator.Handle) bool {
	r, _, _ := procIsWindowVisible.Call(uintptr(h))
	return r != 0
}

// WindowRect returns the screen rectangle of h.
func (s *Shell) WindowRect(h locator.Handle) (models.Rect, error) {
	var rc rect
	r, _, err := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&rc)))
	if r == 0 {
		return models.Rect{}, fmt.Errorf("GetWindowRect: %w", err)
	}
	return models.Rect{
		Left:   int(rc.Left),
		Top:    int(rc.Top),
		Right:  int(rc.Right),
		Bottom: int(rc.Bottom),
	}, nil
}

// TaskbarAutoHide queries ABM_GETSTATE.
func (s *Shell) TaskbarAutoHide() (bool, error) {
	abd := appBarData{}
	abd.Size = uint32(unsafe.Sizeof(abd))
	state, _, _ := procSHAppBarMessage.Call(abmGetState, uintptr(unsafe.Pointer(&abd)))
	return state&absAutoHide != 0, nil
}

// EnumWindows callbacks cannot carry Go closures, so one callback serves
// every enumeration and the collector is swapped under enumMu.
var (
	enumMu       sync.Mutex
	enumFound    []uintptr
	enumCallback = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		enumFound = append(enumFound, hwnd)
		return 1
	})
)

func topLevelWindows() ([]uintptr, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = enumFound[:0]
	r, _, err := procEnumWindows.Call(enumCallback, 0)
	if r == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return slices.Clone(enumFound), nil
}

// FindCandidateWindows enumerates top-level windows in z-order and returns
// those matching c.
func (s *Shell) FindCandidateWindows(c locator.Criteria) ([]locator.Candidate, error) {
	hwnds, err := topLevelWindows()
	if err != nil {
		return nil, err
	}

	var out []locator.Candidate
	for _, hwnd := range hwnds {
		class := className(hwnd)
		if !slices.Contains(c.ClassNames, class) {
			continue
		}
		title := windowText(hwnd)
		if len(c.Titles) > 0 && !slices.Contains(c.Titles, title) {
			continue
		}
		visible := s.IsVisible(locator.Handle(hwnd))
		if c.VisibleOnly && !visible {
			continue
		}
		out = append(out, locator.Candidate{
			Handle:    locator.Handle(hwnd),
			ClassName: class,
			Title:     title,
			Visible:   visible,
		})
	}
	return out, nil
}

func className(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

// ForegroundProcessID returns the PID owning the foreground window.
func (s *Shell) ForegroundProcessID() (uint32, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0, nil
	}
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return pid, nil
}

// ProcessImagePath returns the full executable path of pid.
func (s *Shell) ProcessImagePath(pid uint32) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("OpenProcess %d: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("QueryFullProcessImageName %d: %w", pid, err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}
