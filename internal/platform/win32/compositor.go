//go:build windows

package win32

import (
	"errors"
	"fmt"
	"math"

	"github.com/shelltint/shelltint/internal/daemon/pipeline"
)

var errReleased = errors.New("compositor object released")

// layeredDevice composites with per-window constant alpha. Visual opacity is
// staged and only reaches the screen on Commit.
type layeredDevice struct {
	targets []*layeredTarget
	closed  bool
}

var _ pipeline.Device = (*layeredDevice)(nil)

func newLayeredDevice() *layeredDevice {
	return &layeredDevice{}
}

func (d *layeredDevice) CreateTarget(w pipeline.Window) (pipeline.Target, error) {
	if d.closed {
		return nil, errReleased
	}
	ow, ok := w.(*overlayWindow)
	if !ok {
		return nil, fmt.Errorf("unsupported window type %T", w)
	}
	t := &layeredTarget{dev: d, window: ow}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *layeredDevice) CreateVisual() (pipeline.Visual, error) {
	if d.closed {
		return nil, errReleased
	}
	return &layeredVisual{}, nil
}

// Commit pushes every staged alpha to its window.
func (d *layeredDevice) Commit() error {
	if d.closed {
		return errReleased
	}
	var errs []error
	for _, t := range d.targets {
		v := t.root
		if t.closed || v == nil || v.closed || !v.dirty {
			continue
		}
		if err := t.window.setAlpha(v.alpha()); err != nil {
			errs = append(errs, err)
			continue
		}
		v.dirty = false
	}
	return errors.Join(errs...)
}

func (d *layeredDevice) Close() error {
	d.closed = true
	d.targets = nil
	return nil
}

type layeredTarget struct {
	dev    *layeredDevice
	window *overlayWindow
	root   *layeredVisual
	closed bool
}

func (t *layeredTarget) SetRoot(v pipeline.Visual) error {
	if t.closed {
		return errReleased
	}
	lv, ok := v.(*layeredVisual)
	if !ok {
		return fmt.Errorf("unsupported visual type %T", v)
	}
	t.root = lv
	lv.target = t
	lv.dirty = true
	if lv.hasContent {
		return t.window.setColor(lv.color)
	}
	return nil
}

func (t *layeredTarget) Close() error {
	t.closed = true
	if t.root != nil {
		t.root.target = nil
		t.root = nil
	}
	return nil
}

type layeredVisual struct {
	target     *layeredTarget
	opacity    float64
	color      pipeline.Color
	hasContent bool
	dirty      bool
	closed     bool
}

func (v *layeredVisual) SetOpacity(o float64) error {
	if v.closed {
		return errReleased
	}
	v.opacity = o
	v.dirty = true
	return nil
}

// SetContent sets the flat fill. The window size is owned by the window, so
// only the color matters here.
func (v *layeredVisual) SetContent(c pipeline.Color, _, _ int) error {
	if v.closed {
		return errReleased
	}
	if v.hasContent && v.color == c {
		return nil
	}
	v.color = c
	v.hasContent = true
	if v.target != nil {
		return v.target.window.setColor(c)
	}
	return nil
}

func (v *layeredVisual) Close() error {
	v.closed = true
	return nil
}

func (v *layeredVisual) alpha() byte {
	return byte(math.Round(math.Max(0, math.Min(1, v.opacity)) * 255))
}
