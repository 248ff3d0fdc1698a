package locator

import "github.com/shelltint/shelltint/internal/models"

// Plausible start menu bounds, in pixels.
const (
	startMinWidth  = 300
	startMaxWidth  = 1200
	startMinHeight = 400
	startMaxHeight = 1000
)

// ClassifyEdge decides which border a taskbar rectangle is docked to.
// A bar wider than tall is horizontal (top or bottom by its top coordinate),
// anything else is vertical (left or right by its left coordinate).
func ClassifyEdge(r models.Rect, screen models.Size) models.Edge {
	if r.Height() < r.Width() {
		if r.Top < screen.Height/2 {
			return models.EdgeTop
		}
		return models.EdgeBottom
	}
	if r.Left < screen.Width/2 {
		return models.EdgeLeft
	}
	return models.EdgeRight
}

// ValidStartGeometry reports whether r is sized and placed like a start menu:
// within the size bounds and horizontally centered to within a quarter of
// the screen width.
func ValidStartGeometry(r models.Rect, screen models.Size) bool {
	w, h := r.Width(), r.Height()
	if w < startMinWidth || w > startMaxWidth {
		return false
	}
	if h < startMinHeight || h > startMaxHeight {
		return false
	}

	centerX := r.Left + w/2
	offset := centerX - screen.Width/2
	if offset < 0 {
		offset = -offset
	}
	return offset <= screen.Width/4
}
