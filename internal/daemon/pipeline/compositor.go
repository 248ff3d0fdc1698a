package pipeline

import "github.com/shelltint/shelltint/internal/models"

// Color is an opaque RGB tint.
type Color struct {
	R, G, B uint8
}

// DefaultTint is the overlay's flat content color.
var DefaultTint = Color{R: 0, G: 0, B: 0}

// Window is a native overlay window covering one shell surface.
type Window interface {
	// Move places the window over r and shows it.
	Move(r models.Rect) error
	// Hide removes the window from the screen.
	Hide() error
}

// Device is a compositing device. It is created on the UI thread and every
// method, including those of the targets and visuals it creates, must be
// called from that thread.
type Device interface {
	CreateTarget(w Window) (Target, error)
	CreateVisual() (Visual, error)
	// Commit submits all staged visual changes for display.
	Commit() error
	Close() error
}

// Target binds a visual tree to a window.
type Target interface {
	SetRoot(v Visual) error
	Close() error
}

// Visual is one composited layer. Property changes are staged until the
// device commits.
type Visual interface {
	SetOpacity(v float64) error
	// SetContent fills the visual with a flat color of the given size.
	SetContent(c Color, width, height int) error
	Close() error
}

// Scheduler runs fn on the owning message loop's next iteration.
type Scheduler interface {
	Post(fn func()) bool
}
