package locator

import "github.com/shelltint/shelltint/internal/models"

// TaskbarRecord is one taskbar detection pass, replaced wholesale each time.
type TaskbarRecord struct {
	Handle   Handle
	Rect     models.Rect
	Edge     models.Edge
	AutoHide bool
	Found    bool
}

// StartRecord is one start menu poll.
type StartRecord struct {
	Handle     Handle
	Rect       models.Rect
	IsOpen     bool
	Confidence float64
	Detected   bool
}

// Event is a locator notification. The concrete types are TaskbarChanged,
// StartShown, StartHidden and StartDetectionFailed.
type Event interface {
	isEvent()
}

// TaskbarChanged carries a fresh taskbar detection.
type TaskbarChanged struct {
	Record TaskbarRecord
}

// StartShown reports a confident start menu open.
type StartShown struct {
	Record StartRecord
}

// StartHidden reports that a previously shown start menu closed.
type StartHidden struct{}

// StartDetectionFailed reports that start detection disabled itself after a
// sustained low-confidence streak.
type StartDetectionFailed struct{}

func (TaskbarChanged) isEvent()       {}
func (StartShown) isEvent()           {}
func (StartHidden) isEvent()          {}
func (StartDetectionFailed) isEvent() {}
