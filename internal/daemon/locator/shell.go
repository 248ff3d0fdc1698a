package locator

import "github.com/shelltint/shelltint/internal/models"

// Handle is an opaque native window handle.
type Handle uintptr

// Criteria selects top-level windows for FindCandidateWindows.
type Criteria struct {
	// ClassNames lists acceptable window classes, highest priority first.
	ClassNames []string
	// Titles lists acceptable exact titles. Empty accepts any title.
	Titles []string
	// VisibleOnly drops windows that are not visible.
	VisibleOnly bool
}

// Candidate is one window matched by FindCandidateWindows.
type Candidate struct {
	Handle    Handle
	ClassName string
	Title     string
	Visible   bool
}

// Shell is the window-manager query surface the locator depends on. The
// Windows implementation lives in internal/platform/win32; tests use fakes.
// Implementations must be safe for use from multiple goroutines.
type Shell interface {
	// ScreenSize returns the primary screen size.
	ScreenSize() (models.Size, error)
	// FindTaskbar returns the primary tray window, or 0 when there is none.
	FindTaskbar() (Handle, error)
	// IsWindow reports whether h still names a live window.
	IsWindow(h Handle) bool
	// IsVisible reports the window's visibility flag.
	IsVisible(h Handle) bool
	// WindowRect returns the window's screen rectangle.
	WindowRect(h Handle) (models.Rect, error)
	// TaskbarAutoHide queries the app-bar auto-hide state.
	TaskbarAutoHide() (bool, error)
	// FindCandidateWindows enumerates top-level windows matching c, in z-order.
	FindCandidateWindows(c Criteria) ([]Candidate, error)
	// ForegroundProcessID returns the process owning the foreground window.
	ForegroundProcessID() (uint32, error)
	// ProcessImagePath returns the executable path of a process.
	ProcessImagePath(pid uint32) (string, error)
}
