package locator

import (
	"errors"
	"sync"

	"github.com/shelltint/shelltint/internal/models"
)

var errQuery = errors.New("query failed")

// fakeShell is an in-memory Shell.
type fakeShell struct {
	mu sync.Mutex

	screen     models.Size
	taskbar    Handle
	taskbarErr error
	dead       map[Handle]bool
	hidden     map[Handle]bool
	rects      map[Handle]models.Rect
	autoHide   bool

	candidates []Candidate
	enumErr    error
	foreground uint32
	paths      map[uint32]string
	pathCalls  int
}

func newFakeShell() *fakeShell {
	return &fakeShell{
		screen: models.Size{Width: 1920, Height: 1080},
		dead:   make(map[Handle]bool),
		hidden: make(map[Handle]bool),
		rects:  make(map[Handle]models.Rect),
		paths:  make(map[uint32]string),
	}
}

func (f *fakeShell) ScreenSize() (models.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen, nil
}

func (f *fakeShell) FindTaskbar() (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskbar, f.taskbarErr
}

func (f *fakeShell) IsWindow(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[h]
}

func (f *fakeShell) IsVisible(h Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.hidden[h]
}

func (f *fakeShell) WindowRect(h Handle) (models.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rects[h]
	if !ok {
		return models.Rect{}, errQuery
	}
	return r, nil
}

func (f *fakeShell) TaskbarAutoHide() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoHide, nil
}

func (f *fakeShell) FindCandidateWindows(c Criteria) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	return append([]Candidate(nil), f.candidates...), nil
}

func (f *fakeShell) ForegroundProcessID() (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.foreground, nil
}

func (f *fakeShell) ProcessImagePath(pid uint32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pathCalls++
	p, ok := f.paths[pid]
	if !ok {
		return "", errQuery
	}
	return p, nil
}
