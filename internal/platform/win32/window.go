//go:build windows

package win32

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/shelltint/shelltint/internal/daemon/pipeline"
	"github.com/shelltint/shelltint/internal/models"
)

const (
	overlayClassName = "ShellTintOverlay"
	hostClassName    = "ShellTintHost"
)

// overlayWindow is a topmost, click-through, non-activating layered popup.
// Its background is filled with the current brush on WM_ERASEBKGND.
type overlayWindow struct {
	hwnd  uintptr
	name  string
	brush uintptr
}

var _ pipeline.Window = (*overlayWindow)(nil)

// overlays maps window handles to their state for the shared window procedure.
// Only the UI thread touches it; the mutex guards against a stray cross-thread
// SendMessage.
var (
	overlaysMu sync.Mutex
	overlays   = map[uintptr]*overlayWindow{}
)

var overlayWndProc = windows.NewCallback(func(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	switch message {
	case wmNCHitTest:
		return htTransparent
	case wmEraseBkgnd:
		overlaysMu.Lock()
		w := overlays[hwnd]
		overlaysMu.Unlock()
		if w != nil && w.brush != 0 {
			var rc rect
			procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc)))
			procFillRect.Call(wParam, uintptr(unsafe.Pointer(&rc)), w.brush)
			return 1
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
	return r
})

func registerClass(name string, proc uintptr) error {
	class, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	wc := wndClassEx{
		WndProc:   proc,
		Instance:  moduleHandle(),
		ClassName: class,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return fmt.Errorf("RegisterClassExW %s: %w", name, err)
	}
	return nil
}

func unregisterClass(name string) {
	class, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return
	}
	procUnregisterClassW.Call(uintptr(unsafe.Pointer(class)), moduleHandle())
}

func createWindow(className string, exStyle, style uintptr) (uintptr, error) {
	class, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return 0, err
	}
	hwnd, _, err := procCreateWindowExW.Call(
		exStyle,
		uintptr(unsafe.Pointer(class)),
		0,
		style,
		0, 0, 0, 0,
		0, 0, moduleHandle(), 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW %s: %w", className, err)
	}
	return hwnd, nil
}

// newOverlayWindow creates a hidden overlay. Call on the UI thread.
func newOverlayWindow(name string) (*overlayWindow, error) {
	hwnd, err := createWindow(overlayClassName,
		wsExLayered|wsExTransparent|wsExTopmost|wsExNoActivate|wsExToolWindow,
		wsPopup)
	if err != nil {
		return nil, err
	}
	// Fully transparent until the first commit.
	procSetLayeredWindowAttributes.Call(hwnd, 0, 0, lwaAlpha)

	w := &overlayWindow{hwnd: hwnd, name: name}
	overlaysMu.Lock()
	overlays[hwnd] = w
	overlaysMu.Unlock()
	return w, nil
}

// Move places the overlay over r, above other topmost windows, and shows it.
func (w *overlayWindow) Move(r models.Rect) error {
	ok, _, err := procSetWindowPos.Call(w.hwnd, hwndTopmost,
		uintptr(r.Left), uintptr(r.Top), uintptr(r.Width()), uintptr(r.Height()),
		swpNoActivate|swpShowWindow)
	if ok == 0 {
		return fmt.Errorf("SetWindowPos %s: %w", w.name, err)
	}
	return nil
}

// Hide removes the overlay from the screen.
func (w *overlayWindow) Hide() error {
	procShowWindow.Call(w.hwnd, swHide)
	return nil
}

// setColor swaps the background brush and repaints.
func (w *overlayWindow) setColor(c pipeline.Color) error {
	brush, _, err := procCreateSolidBrush.Call(rgb(c.R, c.G, c.B))
	if brush == 0 {
		return fmt.Errorf("CreateSolidBrush: %w", err)
	}
	overlaysMu.Lock()
	old := w.brush
	w.brush = brush
	overlaysMu.Unlock()
	if old != 0 {
		procDeleteObject.Call(old)
	}
	procInvalidateRect.Call(w.hwnd, 0, 1)
	return nil
}

// setAlpha applies a committed opacity.
func (w *overlayWindow) setAlpha(alpha byte) error {
	ok, _, err := procSetLayeredWindowAttributes.Call(w.hwnd, 0, uintptr(alpha), lwaAlpha)
	if ok == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes %s: %w", w.name, err)
	}
	return nil
}

func (w *overlayWindow) destroy() {
	overlaysMu.Lock()
	delete(overlays, w.hwnd)
	brush := w.brush
	w.brush = 0
	overlaysMu.Unlock()

	if brush != 0 {
		procDeleteObject.Call(brush)
	}
	procDestroyWindow.Call(w.hwnd)
}
